package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/colonyops/tempo/internal/core/config"
	"github.com/colonyops/tempo/internal/core/styles"
	"github.com/colonyops/tempo/pkg/iojson"
	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"
)

type ConfigCmd struct {
	flags  *Flags
	format string
}

// NewConfigCmd creates a new config command.
func NewConfigCmd(flags *Flags) *ConfigCmd {
	return &ConfigCmd{flags: flags}
}

// Register adds the config command to the application.
func (cmd *ConfigCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "tempo config validate [options]",
				Description: "Validates the configuration file and data directory and reports non-fatal warnings.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.runValidate,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration as YAML",
				Action: cmd.runShow,
			},
		},
	})

	return app
}

type validationJSON struct {
	Valid    bool                       `json:"valid"`
	Errors   []string                   `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

func (cmd *ConfigCmd) runValidate(_ context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config
	err := cfg.ValidateDeep(cmd.flags.ConfigPath)

	out := validationJSON{
		Valid:    err == nil,
		Errors:   errorLines(err),
		Warnings: cfg.Warnings(),
	}

	if cmd.format == "json" {
		return iojson.WriteWith(c.Root().Writer, os.Stderr, out)
	}

	w := c.Root().Writer
	for _, warn := range out.Warnings {
		_, _ = fmt.Fprintln(w, styles.WarningStyle.Render(fmt.Sprintf("%s: %s", warn.Category, warn.Message)))
	}
	for _, line := range out.Errors {
		_, _ = fmt.Fprintln(w, styles.ErrorStyle.Render(line))
	}

	if out.Valid {
		_, _ = fmt.Fprintln(w, styles.SuccessStyle.Render("Configuration is valid"))
		return nil
	}

	return cli.Exit(fmt.Sprintf("%d error(s) found", len(out.Errors)), 1)
}

func errorLines(err error) []string {
	if err == nil {
		return nil
	}

	var fields criterio.FieldErrors
	if !errors.As(err, &fields) {
		return []string{err.Error()}
	}

	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, fmt.Sprintf("%s: %v", f.Field, f.Err))
	}
	return lines
}

func (cmd *ConfigCmd) runShow(_ context.Context, c *cli.Command) error {
	data, err := cmd.flags.Config.Marshal()
	if err != nil {
		return err
	}

	_, err = c.Root().Writer.Write(data)
	return err
}
