package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-multierror"

	"github.com/joacominatel/featherdb/internal/app"
	"github.com/joacominatel/featherdb/internal/config"
	"github.com/joacominatel/featherdb/internal/tui"
	"github.com/joacominatel/featherdb/internal/tui/theme"
)

type flags struct {
	dsn      string
	profile  string
	exec     string
	tx       bool
	logLevel string
	save     bool
	maxRows  int
}

func main() {
	var f flags
	flag.StringVar(&f.dsn, "dsn", "", "connection string (postgresql://user@host/db or sqlite:/path/file.db)")
	flag.StringVar(&f.profile, "profile", "", "saved connection profile to use")
	flag.StringVar(&f.exec, "e", "", "execute one statement, print the result and exit")
	flag.BoolVar(&f.tx, "tx", false, "run the -e statement inside a transaction")
	flag.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (default from config)")
	flag.BoolVar(&f.save, "save", false, "save the -dsn connection as a profile")
	flag.IntVar(&f.maxRows, "max-rows", -1, "rows to keep per result, 0 for all (default from config)")
	flag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintln(os.Stderr, theme.StyleError.Render("featherdb: "+err.Error()))
		os.Exit(1)
	}
}

func run(f flags) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = &config.Config{}
	}

	profile, err := selectProfile(cfg, f)
	if err != nil {
		return &app.ErrConfig{Cause: err}
	}

	interactive := f.exec == ""
	logger, closeLog, err := newLogger(cfg, f.logLevel, interactive)
	if err != nil {
		return err
	}
	defer closeLog()

	maxRows := cfg.Preferences.MaxRows
	if f.maxRows >= 0 {
		maxRows = f.maxRows
	}
	service := app.NewService(logger, maxRows)

	if interactive {
		model := tui.NewModel(service, cfg, profile)
		p := tea.NewProgram(model, tea.WithAltScreen())
		_, runErr := p.Run()
		return joinErrors(runErr, service.Disconnect(context.Background()))
	}

	if profile == nil {
		return &app.ErrConfig{Cause: errors.New("no connection: pass -dsn or -profile, or save a default profile")}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return execOnce(ctx, service, *profile, f.exec, f.tx, os.Stdout)
}

// selectProfile picks the connection from -dsn, -profile or the configured
// default, in that order. It returns nil when none applies.
func selectProfile(cfg *config.Config, f flags) (*config.Connection, error) {
	switch {
	case f.dsn != "":
		profile, err := config.ParseDSN(f.dsn)
		if err != nil {
			return nil, err
		}
		if f.save && !cfg.HasConnection(profile.Name) {
			cfg.AddConnection(profile)
			if err := config.Save(cfg); err != nil {
				return nil, fmt.Errorf("save profile: %w", err)
			}
		}
		return &profile, nil
	case f.profile != "":
		profile := cfg.Connection(f.profile)
		if profile == nil {
			return nil, fmt.Errorf("unknown profile %q", f.profile)
		}
		return profile, nil
	case f.exec != "":
		return config.DefaultConnection(cfg), nil
	}
	return nil, nil
}

func execOnce(ctx context.Context, service *app.Service, profile config.Connection, sql string, inTx bool, out io.Writer) error {
	if err := service.Connect(ctx, profile); err != nil {
		return err
	}

	res, err := service.Execute(ctx, sql, inTx)
	if err == nil {
		printResult(out, res)
	}
	return joinErrors(err, service.Disconnect(context.Background()))
}

// joinErrors combines the non-nil errors into one line.
func joinErrors(errs ...error) error {
	merr := multierror.Append(nil, errs...)
	merr.ErrorFormat = func(errs []error) string {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		return strings.Join(msgs, "; ")
	}
	return merr.ErrorOrNil()
}

func printResult(out io.Writer, res *app.Result) {
	if len(res.Columns) == 0 {
		fmt.Fprintf(out, "OK (%s)\n", res.Duration)
		return
	}
	fmt.Fprintln(out, theme.Table(res.Columns, res.Rows))
	footer := fmt.Sprintf("(%d rows)", res.RowCount)
	if res.Truncated {
		footer = fmt.Sprintf("(%d rows, %d shown)", res.RowCount, len(res.Rows))
	}
	fmt.Fprintln(out, theme.StyleMuted.Render(footer))
}

// newLogger writes text logs to stderr for one-shot runs and to a file in the
// config directory while the console owns the terminal.
func newLogger(cfg *config.Config, flagLevel string, interactive bool) (*slog.Logger, func(), error) {
	levelText := cfg.Preferences.LogLevel
	if flagLevel != "" {
		levelText = flagLevel
	}
	var level slog.Level
	if levelText != "" {
		if err := level.UnmarshalText([]byte(levelText)); err != nil {
			return nil, nil, &app.ErrConfig{Cause: fmt.Errorf("log level: %w", err)}
		}
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if interactive {
		dir, err := config.Dir()
		if err != nil {
			return nil, nil, &app.ErrConfig{Cause: err}
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, nil, &app.ErrConfig{Cause: err}
		}
		file, err := os.OpenFile(filepath.Join(dir, "featherdb.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, nil, &app.ErrConfig{Cause: err}
		}
		w = file
		closeFn = func() { _ = file.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}
