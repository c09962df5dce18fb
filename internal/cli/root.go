// Package cli is hcmsctl, the terminal client of the HCMS console. It shares
// the session store, gateway, route table and list contract with the browser
// console; the credential lives in a token file instead of a cookie session.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hcms-console/hcms-console/internal/gateway"
	"github.com/hcms-console/hcms-console/internal/guard"
	"github.com/hcms-console/hcms-console/internal/listview"
	"github.com/hcms-console/hcms-console/internal/output"
	"github.com/hcms-console/hcms-console/internal/session"
	"github.com/hcms-console/hcms-console/internal/toast"
	"github.com/hcms-console/hcms-console/internal/view"
)

// Errors reported before any backend call is made.
var (
	ErrNotLoggedIn    = errors.New("not logged in, run: hcmsctl login")
	ErrForbidden      = errors.New("not permitted")
	ErrSessionExpired = errors.New("session expired, run: hcmsctl login")
)

// Options injects the client's surroundings. Zero values use the process
// environment.
type Options struct {
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
	Config     *Config
	Persister  session.Persister
	HTTPClient *http.Client
	Now        func() time.Time
}

type client struct {
	opts    Options
	cfg     *Config
	logger  *slog.Logger
	store   *session.Store
	api     *gateway.Client
	anon    *gateway.Client
	routes  *guard.Table
	board   *toast.Board
	printer *output.Printer
	money   *view.Money
	now     func() time.Time
}

// Execute runs hcmsctl with args and returns the process exit code.
func Execute(ctx context.Context, args []string, opts Options) int {
	c := &client{opts: opts}
	root := newRootCommand(c)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)

	p := c.printer
	if p == nil {
		p = output.NewPrinter(opts.Stdout, opts.Stderr, false)
	}
	if c.board != nil {
		if err != nil {
			c.board.Error(err.Error())
		}
		p.Toast(c.board.Take())
	} else if err != nil {
		errBoard := toast.NewBoard(nil)
		errBoard.Error(err.Error())
		p.Toast(errBoard.Take())
	}
	if err != nil {
		return 1
	}
	return 0
}

func newRootCommand(c *client) *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:   "hcmsctl",
		Short: "Terminal client for the HCMS console",
		Long: `hcmsctl signs in to the HCMS REST API and works the same screens as the
browser console: employees, departments, leave, attendance, payroll and
notifications. Commands a role may not open are refused locally.

Example usage:
  hcmsctl login --user jane@example.com
  hcmsctl leaves pending
  hcmsctl leaves approve 42
  hcmsctl payroll payslip 7 --dir ~/Downloads`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd.Context(), cfgFile)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .hcmsctl.yaml)")
	if c.opts.Stdin != nil {
		root.SetIn(c.opts.Stdin)
	}
	if c.opts.Stdout != nil {
		root.SetOut(c.opts.Stdout)
	}
	if c.opts.Stderr != nil {
		root.SetErr(c.opts.Stderr)
	}

	root.AddCommand(
		loginCommand(c),
		logoutCommand(c),
		whoamiCommand(c),
		registerCommand(c),
		employeesCommand(c),
		departmentsCommand(c),
		leavesCommand(c),
		attendanceCommand(c),
		payrollCommand(c),
		notificationsCommand(c),
		routesCommand(c),
	)
	return root
}

func (c *client) init(ctx context.Context, cfgFile string) error {
	cfg := c.opts.Config
	if cfg == nil {
		loaded, err := LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	c.cfg = cfg

	errOut := c.opts.Stderr
	if errOut == nil {
		errOut = os.Stderr
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		level = slog.LevelWarn
	}
	c.logger = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	c.now = c.opts.Now
	if c.now == nil {
		c.now = time.Now
	}
	c.printer = output.NewPrinter(c.opts.Stdout, c.opts.Stderr, output.UseColors(cfg.Output.Colors))
	c.board = toast.NewBoard(c.now)
	c.routes = guard.DefaultTable()

	money, err := view.NewMoney(cfg.Output.Currency)
	if err != nil {
		return err
	}
	c.money = money

	persister := c.opts.Persister
	if persister == nil {
		persister = session.FilePersister{Path: cfg.Session.TokenFile}
	}
	c.store = session.NewStore(persister, session.WithLogger(c.logger), session.WithClock(c.now))
	if err := c.store.Restore(ctx); err != nil {
		return err
	}

	hc := c.opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.API.Timeout}
	}
	c.anon = gateway.New(cfg.API.BaseURL, gateway.WithHTTPClient(hc), gateway.WithLogger(c.logger))
	c.api = c.anon.WithStore(c.store)
	c.logger.Debug("configuration loaded", slog.String("api", cfg.API.BaseURL), slog.String("token_file", cfg.Session.TokenFile))
	return nil
}

// authorize runs the browser's route guard for path against the current
// session.
func (c *client) authorize(path string) error {
	d := c.routes.Evaluate(path, c.store.Snapshot())
	if d.Allow {
		return nil
	}
	if d.Redirect == guard.LoginPath {
		return ErrNotLoggedIn
	}
	role := "this role"
	if id := c.store.Identity(); id != nil {
		role = id.Role.Label()
	}
	return fmt.Errorf("%w: %s cannot open %s", ErrForbidden, role, path)
}

// failure turns a backend error into what the user is told. A 401 has already
// cleared the stored credential.
func (c *client) failure(err error, fallback string) error {
	if errors.Is(err, gateway.ErrUnauthorized) {
		return ErrSessionExpired
	}
	c.logger.Debug("backend call failed", slog.Any("error", err))
	return errors.New(gateway.Message(err, fallback))
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

type listFlags struct {
	page   int
	size   int
	status string
	sort   string
	desc   bool
}

func (f *listFlags) register(cmd *cobra.Command, withStatus bool) {
	cmd.Flags().IntVar(&f.page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(&f.size, "size", listview.DefaultPageSize, "rows per page")
	cmd.Flags().StringVar(&f.sort, "sort", "", "column to sort by")
	cmd.Flags().BoolVar(&f.desc, "desc", false, "sort descending")
	if withStatus {
		cmd.Flags().StringVar(&f.status, "status", "", "filter by status")
	}
}

// query converts flags to the list query the browser would send. Pages are
// shown 1-based and requested 0-based.
func (f listFlags) query() listview.Query {
	v := url.Values{
		"page":   {strconv.Itoa(f.page - 1)},
		"size":   {strconv.Itoa(f.size)},
		"status": {f.status},
		"sort":   {f.sort},
	}
	if f.desc {
		v.Set("dir", listview.Desc)
	}
	return listview.ParseQuery(v)
}

// renderList prints one page of rows and the pager line.
func renderList[T any](c *client, title string, cols []listview.Column[T], page listview.Page[T], q listview.Query, empty string) error {
	c.printer.Header(title)
	if len(page.Rows) == 0 {
		c.printer.Print("%s", empty)
		return nil
	}
	table := listview.BuildTable(cols, page.Rows, q, "")
	if err := output.FromList(c.printer.Out(), table).Render(); err != nil {
		return err
	}
	current, total := listview.NewPager(q.Page, page.TotalPages).Display()
	if total > 1 {
		c.printer.Print("Page %d / %d", current, total)
	}
	return nil
}

// fieldErrors joins per-field validation messages into one error, ordered
// by field name.
func fieldErrors(errs map[string]string) error {
	if len(errs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, "--"+k+": "+errs[k])
	}
	return errors.New(strings.Join(lines, "; "))
}
