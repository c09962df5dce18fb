// Package output renders terminal client results: toasts, headers and status
// words in color, list tables through tablewriter.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/hcms-console/hcms-console/internal/shared"
)

// Printer writes formatted lines to stdout and stderr.
type Printer struct {
	out       io.Writer
	err       io.Writer
	useColors bool
}

// UseColors resolves the configured color preference against NO_COLOR and
// dumb terminals.
func UseColors(configured bool) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return configured
}

// NewPrinter creates a printer over the given writers.
func NewPrinter(out, errOut io.Writer, useColors bool) *Printer {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Printer{out: out, err: errOut, useColors: useColors}
}

// Out is the printer's primary writer.
func (p *Printer) Out() io.Writer { return p.out }

// Print writes a plain line.
func (p *Printer) Print(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Header writes an underlined section title.
func (p *Printer) Header(title string) {
	if p.useColors {
		color.New(color.Bold).Fprintf(p.out, "%s\n", title)
		fmt.Fprintf(p.out, "%s\n", strings.Repeat("─", len([]rune(title))))
		return
	}
	fmt.Fprintf(p.out, "%s\n%s\n", title, strings.Repeat("-", len(title)))
}

// Field writes one "label: value" line.
func (p *Printer) Field(label, value string) {
	if p.useColors {
		fmt.Fprintf(p.out, "%s %s\n", color.New(color.Faint).Sprint(label+":"), value)
		return
	}
	fmt.Fprintf(p.out, "%s: %s\n", label, value)
}

// Toast writes the client's transient notification. Errors go to stderr.
func (p *Printer) Toast(t *shared.Toast) {
	if t == nil || t.Text == "" {
		return
	}
	switch t.Kind {
	case shared.ToastError:
		if p.useColors {
			color.New(color.FgRed).Fprintf(p.err, "✗ %s\n", t.Text)
			return
		}
		fmt.Fprintf(p.err, "[ERROR] %s\n", t.Text)
	case shared.ToastSuccess:
		if p.useColors {
			color.New(color.FgGreen).Fprintf(p.out, "✓ %s\n", t.Text)
			return
		}
		fmt.Fprintf(p.out, "[OK] %s\n", t.Text)
	default:
		if p.useColors {
			color.New(color.FgCyan).Fprintf(p.out, "%s\n", t.Text)
			return
		}
		fmt.Fprintf(p.out, "[INFO] %s\n", t.Text)
	}
}

// Status colors a backend status word.
func (p *Printer) Status(status string) string {
	if !p.useColors {
		return status
	}
	switch strings.ToUpper(status) {
	case "APPROVED", "PRESENT", "PAID", "READ":
		return color.GreenString(status)
	case "REJECTED", "ABSENT":
		return color.RedString(status)
	case "PENDING", "LATE", "EARLY_DEPARTURE", "UNREAD":
		return color.YellowString(status)
	default:
		return status
	}
}
