package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/newsdesk/internal/core/logging"
	"github.com/colonyops/newsdesk/internal/metrics"
	"github.com/colonyops/newsdesk/internal/newsdesk"
	"github.com/colonyops/newsdesk/internal/tui"
)

type TuiCmd struct {
	flags *Flags
	app   *newsdesk.App
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *newsdesk.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "metrics-addr",
			Usage:       "serve Prometheus metrics and pprof on this address (e.g., 127.0.0.1:9090)",
			Sources:     cli.EnvVars("NEWSDESK_METRICS_ADDR"),
			Destination: &cmd.flags.MetricsAddr,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.app.Config

	if cfg.Metrics.Addr != "" && cmd.app.Metrics != nil {
		srv := metrics.NewServer(cfg.Metrics.Addr, cmd.app.Metrics)
		if err := srv.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown metrics server")
			}
		}()
		log.Info().
			Str("url", fmt.Sprintf("http://%s/metrics", srv.Addr())).
			Msg("metrics endpoint available")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := tui.New(ctx, tui.Options{
		Service:    cmd.app.Coordinator,
		Bus:        cmd.app.Bus,
		DateFormat: cfg.TUI.DateFormat,
		ToastTTL:   cfg.TUI.ToastTTL,
		Logger:     logging.Component("tui"),
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
