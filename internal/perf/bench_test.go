package perf

import (
	"encoding/json"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/hcms-console/hcms-console/internal/guard"
	"github.com/hcms-console/hcms-console/internal/identity"
	"github.com/hcms-console/hcms-console/internal/listview"
	"github.com/hcms-console/hcms-console/internal/session"
)

type row struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

func pagePayload(n int) []byte {
	rows := make([]row, n)
	for i := range rows {
		rows[i] = row{ID: int64(i + 1), Name: fmt.Sprintf("Employee %d", i+1), Status: "ACTIVE"}
	}
	raw, _ := json.Marshal(map[string]any{"content": rows, "totalPages": 40, "totalElements": 40 * n})
	return raw
}

// The guard runs on every navigation; a full table walk must stay well under
// the cost of the backend round trip it protects.
func TestGuardLatencyTarget(t *testing.T) {
	table := guard.DefaultTable()
	snap := session.Snapshot{Identity: &identity.Identity{Email: "mgr@example.com", Role: identity.RoleManager}}
	paths := []string{"/dashboard", "/payroll/42/pdf", "/notifications/7/read", "/no/such/screen"}

	samples := make([]time.Duration, 0, 200)
	for i := 0; i < 200; i++ {
		start := time.Now()
		for _, p := range paths {
			table.Evaluate(p, snap)
		}
		samples = append(samples, time.Since(start))
	}
	if p95 := percentile95(samples); p95 > 5*time.Millisecond {
		t.Fatalf("guard latency regression: p95=%s threshold=5ms", p95)
	}
}

func BenchmarkGuardEvaluate(b *testing.B) {
	table := guard.DefaultTable()
	snap := session.Snapshot{Identity: &identity.Identity{Email: "admin@example.com", Role: identity.RoleAdmin}}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		table.Evaluate("/notifications/7/read", snap)
	}
}

func BenchmarkNormalizePage(b *testing.B) {
	raw := pagePayload(listview.DefaultPageSize)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := listview.Normalize[row](raw); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuildTable(b *testing.B) {
	page, err := listview.Normalize[row](pagePayload(50))
	if err != nil {
		b.Fatal(err)
	}
	cols := []listview.Column[row]{
		{Key: "id", Label: "ID", Sortable: true},
		{Key: "name", Label: "Name", Sortable: true},
		{Key: "status", Label: "Status"},
	}
	q := listview.Query{Page: 3, Size: 50, Sort: listview.Sort{Key: "name", Dir: listview.Asc}}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		listview.BuildTable(cols, page.Rows, q, "/employees")
	}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	return sorted[index]
}
