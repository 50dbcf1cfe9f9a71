package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/colonyops/tempo/internal/core/doctor"
	"github.com/colonyops/tempo/internal/core/styles"
	"github.com/colonyops/tempo/internal/data/stores"
	"github.com/colonyops/tempo/pkg/iojson"
	"github.com/urfave/cli/v3"
)

type DoctorCmd struct {
	flags   *Flags
	format  string
	autofix bool
}

func NewDoctorCmd(flags *Flags) *DoctorCmd {
	return &DoctorCmd{flags: flags}
}

func (cmd *DoctorCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "doctor",
		Usage:       "Run health checks on your tempo setup",
		UsageText:   "tempo doctor [options]",
		Description: "Runs diagnostic checks on configuration, database, identity and notification history.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
			&cli.BoolFlag{
				Name:        "autofix",
				Usage:       "automatically fix issues (e.g., prune old notification history)",
				Destination: &cmd.autofix,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *DoctorCmd) run(ctx context.Context, c *cli.Command) error {
	app := cmd.flags.App

	checks := []doctor.Check{
		doctor.NewConfigCheck(app.Config, cmd.flags.ConfigPath),
		doctor.NewDatabaseCheck(app.DB.Conn()),
		doctor.NewIdentityCheck(app.Current()),
		doctor.NewHistoryCheck(stores.NewNotifyStore(app.DB), app.Config.Notifications.HistoryRetention, cmd.autofix),
	}

	report := doctor.Run(ctx, checks)

	if cmd.format == "json" {
		return iojson.WriteWith(c.Root().Writer, os.Stderr, report)
	}

	return cmd.outputText(report)
}

func statusIcon(s doctor.Status) string {
	switch s {
	case doctor.StatusWarn:
		return styles.WarningStyle.Render("●")
	case doctor.StatusFail:
		return styles.ErrorStyle.Render("✘")
	default:
		return styles.SuccessStyle.Render("✔")
	}
}

func (cmd *DoctorCmd) outputText(report doctor.Report) error {
	w := os.Stderr
	divider := styles.MutedStyle.Render(strings.Repeat("─", 40))

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, styles.CommandHeaderStyle.Render("Tempo Doctor"))
	_, _ = fmt.Fprintln(w, divider)
	_, _ = fmt.Fprintln(w)

	for _, result := range report.Checks {
		_, _ = fmt.Fprintf(w, "%s %s\n", statusIcon(result.Worst()), result.Name)

		for _, item := range result.Items {
			var detail string
			if item.Detail != "" {
				detail = " " + styles.MutedStyle.Render(item.Detail)
			}
			_, _ = fmt.Fprintf(w, "    %s %s%s\n", statusIcon(item.Status), item.Label, detail)
		}

		_, _ = fmt.Fprintln(w)
	}

	summary := report.Summary
	style := styles.SuccessStyle
	switch {
	case summary.Failed > 0:
		style = styles.ErrorStyle
	case summary.Warned > 0:
		style = styles.WarningStyle
	}
	_, _ = fmt.Fprintln(w, style.Render(summary.String()))

	if !cmd.autofix && summary.Fixable > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, styles.MutedStyle.Render(fmt.Sprintf("Run 'tempo doctor --autofix' to fix %d issue(s)", summary.Fixable)))
	}

	if !report.Healthy {
		return cli.Exit("", 1)
	}

	return nil
}
