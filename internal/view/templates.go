package view

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hcms-console/hcms-console/internal/identity"
	"github.com/hcms-console/hcms-console/internal/shared"
	"github.com/hcms-console/hcms-console/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
	money     *Money
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Toast       *shared.Toast
	CurrentPath string
	Identity    *identity.Identity
	Nav         []NavItem
	Errors      map[string]string
	Data        any
}

// Option configures the engine.
type Option func(*Engine)

// WithCurrency sets the ISO 4217 code used by the money helper.
func WithCurrency(code string) Option {
	return func(e *Engine) {
		if m, err := NewMoney(code); err == nil {
			e.money = m
		}
	}
}

// NewEngine parses templates at build-time.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{money: defaultMoney()}
	for _, opt := range opts {
		opt(e)
	}
	funcMap := template.FuncMap{
		"formatDate": FormatDate,
		"formatTime": FormatTime,
		"money":      e.money.Format,
		"roleLabel":  func(r identity.Role) string { return r.Label() },
		"lower":      strings.ToLower,
		"title":      titleCase,
		"add":        func(a, b int) int { return a + b },
		"fieldError": func(errs map[string]string, field string) string { return errs[field] },
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html", "templates/reports/*.html")
	if err != nil {
		return nil, err
	}
	e.templates = tpl
	return e, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus executes a named template with an explicit status code.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf strings.Builder
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write([]byte(buf.String()))
	return err
}

// Execute writes a template without page chrome, for documents such as PDF
// reports.
func (e *Engine) Execute(w io.Writer, name string, data any) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	return e.templates.ExecuteTemplate(w, name, data)
}

// Money formats amount in the engine's currency.
func (e *Engine) Money(amount float64) string {
	return e.money.Format(amount)
}

// Money formats amounts for one currency.
type Money struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewMoney validates code and returns a formatter for it.
func NewMoney(code string) (*Money, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, fmt.Errorf("view: currency %q: %w", code, err)
	}
	return &Money{unit: unit, printer: message.NewPrinter(language.English)}, nil
}

func defaultMoney() *Money {
	return &Money{unit: currency.USD, printer: message.NewPrinter(language.English)}
}

// Format renders amount with thousands grouping and two decimals.
func (m *Money) Format(amount float64) string {
	return m.unit.String() + " " + m.printer.Sprintf("%.2f", amount)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// FormatDate renders a backend date (string or time.Time) as "02 Jan 2006".
// Unparseable strings are returned as-is.
func FormatDate(v any) string {
	t, raw, ok := asTime(v)
	if !ok {
		return raw
	}
	return t.Format("02 Jan 2006")
}

// FormatTime renders a backend timestamp or time of day as "15:04".
func FormatTime(v any) string {
	t, raw, ok := asTime(v)
	if !ok {
		if parsed, err := time.Parse("15:04:05", raw); err == nil {
			return parsed.Format("15:04")
		}
		return raw
	}
	return t.Format("15:04")
}

func asTime(v any) (time.Time, string, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, "", !val.IsZero()
	case *time.Time:
		if val == nil {
			return time.Time{}, "", false
		}
		return *val, "", !val.IsZero()
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				return t, val, true
			}
		}
		return time.Time{}, val, false
	}
	return time.Time{}, "", false
}

// titleCase turns PENDING or check_in into Pending or Check in.
func titleCase(s string) string {
	s = strings.ReplaceAll(strings.ToLower(s), "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
