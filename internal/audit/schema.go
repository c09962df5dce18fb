package audit

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/hcms-console/hcms-console/internal/platform/db"
)

//go:embed schema.sql
var schema string

// Statements returns the DDL statements of the trail's schema in order.
func Statements() []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// EnsureSchema creates the console_sessions table and index when missing.
func EnsureSchema(ctx context.Context, conn db.Beginner) error {
	return db.InTx(ctx, conn, db.Migration, func(tx pgx.Tx) error {
		for _, stmt := range Statements() {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("audit: schema: %w", err)
			}
		}
		return nil
	})
}
