package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/colonyops/tempo/internal/core/pomodoro"
	"github.com/colonyops/tempo/pkg/iojson"
	"github.com/urfave/cli/v3"
)

// SettingsCmd implements the tempo settings command group.
type SettingsCmd struct {
	flags *Flags

	work          int
	shortBreak    int
	longBreak     int
	sessions      int
	autoBreaks    bool
	autoWork      bool
	notifications bool
}

// NewSettingsCmd creates a new settings command.
func NewSettingsCmd(flags *Flags) *SettingsCmd {
	return &SettingsCmd{flags: flags}
}

// Register adds the settings command to the application.
func (cmd *SettingsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "settings",
		Usage: "Show or change timer settings",
		Description: `Timer settings are saved per signed-in identity. Signed out, the
defaults from the config file apply and changes are not saved.

Examples:
  tempo settings show
  tempo settings set --work 50 --short-break 10
  tempo settings reset-stats`,
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the current settings as JSON",
				Action: cmd.runShow,
			},
			{
				Name:      "set",
				Usage:     "Change settings",
				UsageText: "tempo settings set [--work <min>] [--short-break <min>] [--long-break <min>] [--sessions <n>] [--auto-start-breaks=<bool>] [--auto-start-work=<bool>] [--notifications=<bool>]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "work", Usage: "work session length in minutes", Destination: &cmd.work},
					&cli.IntFlag{Name: "short-break", Usage: "short break length in minutes", Destination: &cmd.shortBreak},
					&cli.IntFlag{Name: "long-break", Usage: "long break length in minutes", Destination: &cmd.longBreak},
					&cli.IntFlag{Name: "sessions", Usage: "work sessions before a long break", Destination: &cmd.sessions},
					&cli.BoolFlag{Name: "auto-start-breaks", Usage: "start breaks automatically", Destination: &cmd.autoBreaks},
					&cli.BoolFlag{Name: "auto-start-work", Usage: "start work sessions automatically", Destination: &cmd.autoWork},
					&cli.BoolFlag{Name: "notifications", Usage: "alert when a session completes", Destination: &cmd.notifications},
				},
				Action: cmd.runSet,
			},
			{
				Name:   "reset-stats",
				Usage:  "Zero the completed session count",
				Action: cmd.runResetStats,
			},
		},
	})

	return app
}

func (cmd *SettingsCmd) runShow(_ context.Context, c *cli.Command) error {
	return iojson.WriteWith(c.Root().Writer, os.Stderr, cmd.flags.App.Engine.Settings())
}

func (cmd *SettingsCmd) runSet(_ context.Context, c *cli.Command) error {
	engine := cmd.flags.App.Engine
	s := cmd.apply(c, engine.Settings())

	if err := engine.UpdateSettings(s); err != nil {
		var verr *pomodoro.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Fields {
				_ = iojson.WriteError(fmt.Sprintf("%s: %v", fe.Field, fe.Err), nil)
			}
			return cli.Exit("", 1)
		}
		return err
	}

	if cmd.flags.App.Current().IsZero() {
		_, _ = fmt.Fprintln(os.Stderr, "not signed in; settings apply to this run only")
	}

	return iojson.WriteWith(c.Root().Writer, os.Stderr, engine.Settings())
}

// apply copies the explicitly set flags onto s.
func (cmd *SettingsCmd) apply(c interface{ IsSet(string) bool }, s pomodoro.Settings) pomodoro.Settings {
	if c.IsSet("work") {
		s.WorkMinutes = cmd.work
	}
	if c.IsSet("short-break") {
		s.ShortBreakMinutes = cmd.shortBreak
	}
	if c.IsSet("long-break") {
		s.LongBreakMinutes = cmd.longBreak
	}
	if c.IsSet("sessions") {
		s.SessionsBeforeLongBreak = cmd.sessions
	}
	if c.IsSet("auto-start-breaks") {
		s.AutoStartBreaks = cmd.autoBreaks
	}
	if c.IsSet("auto-start-work") {
		s.AutoStartWork = cmd.autoWork
	}
	if c.IsSet("notifications") {
		s.NotificationsEnabled = cmd.notifications
	}
	return s
}

func (cmd *SettingsCmd) runResetStats(_ context.Context, c *cli.Command) error {
	engine := cmd.flags.App.Engine
	engine.ResetAll()

	return iojson.WriteLine(c.Root().Writer, map[string]int{"sessionsCompleted": engine.Snapshot().SessionsCompleted})
}
