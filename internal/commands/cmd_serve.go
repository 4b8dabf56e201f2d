package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/newsdesk/internal/core/logging"
	"github.com/colonyops/newsdesk/internal/core/session"
	"github.com/colonyops/newsdesk/internal/devserver"
)

type ServeCmd struct {
	flags    *Flags
	addr     string
	user     string
	groups   []string
	fixtures string
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Run a local backend with fixture stories and comments",
		UsageText: "newsdesk serve [options]",
		Description: `Serves the stories, comments and auth endpoints from fixtures so the
reader can be used without the real backend.

Point the reader at it with --api-url http://<addr>.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8000",
				Destination: &cmd.addr,
			},
			&cli.StringFlag{
				Name:        "user",
				Usage:       "email of the logged in user (empty starts logged out)",
				Destination: &cmd.user,
			},
			&cli.StringSliceFlag{
				Name:        "groups",
				Usage:       "groups of the logged in user",
				Destination: &cmd.groups,
			},
			&cli.StringFlag{
				Name:        "fixtures",
				Usage:       "fixture file or glob (supports **); defaults to built-in fixtures",
				Destination: &cmd.fixtures,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, c *cli.Command) error {
	fx := devserver.DefaultFixtures()
	if cmd.fixtures != "" {
		loaded, err := devserver.LoadFixturesGlob(cmd.fixtures)
		if err != nil {
			return err
		}
		fx = loaded
	}

	if cmd.user != "" {
		fx.User = &session.UserInfo{Email: cmd.user, Groups: cmd.groups}
	}

	listener, err := net.Listen("tcp", cmd.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cmd.addr, err)
	}

	srv := &http.Server{
		Handler:           devserver.New(fx, logging.Component("devserver")).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("failed to shutdown dev server")
		}
	}()

	user := "logged out"
	if fx.User != nil {
		user = fx.User.Email + " [" + strings.Join(fx.User.Groups, ",") + "]"
	}
	printSuccess(c.Root().Writer, "serving %d stories on http://%s (%s)", len(fx.Stories), listener.Addr(), user)

	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
