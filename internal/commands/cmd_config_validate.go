package commands

import (
	"context"
	"errors"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "newsdesk config validate [options]",
				Description: "Validates the configuration file, checking URLs, listen addresses, the theme and the config file path.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

type validationOutput struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (cmd *ConfigValidateCmd) run(_ context.Context, c *cli.Command) error {
	err := cmd.flags.Config.ValidateDeep(cmd.flags.ConfigPath)

	out := validationOutput{Valid: err == nil}
	if err != nil {
		out.Errors = fieldErrors(err)
	}

	w := c.Root().Writer
	if cmd.format == "json" {
		if werr := writeJSON(w, c.Root().ErrWriter, out); werr != nil {
			return werr
		}
	} else {
		for field, msg := range out.Errors {
			printError(w, "%s: %s", field, msg)
		}
		if out.Valid {
			printSuccess(w, "Configuration is valid")
		}
	}

	if !out.Valid {
		return cli.Exit("", 1)
	}
	return nil
}

// fieldErrors flattens validation errors into field to message pairs.
func fieldErrors(err error) map[string]string {
	var fe criterio.FieldErrors
	if !errors.As(err, &fe) {
		return map[string]string{"config": err.Error()}
	}

	out := make(map[string]string, len(fe))
	for _, e := range fe {
		out[e.Field] = e.Err.Error()
	}
	return out
}
