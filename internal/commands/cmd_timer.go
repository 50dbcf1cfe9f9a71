package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/tempo/internal/notifier"
	"github.com/colonyops/tempo/internal/tui"
)

type TimerCmd struct {
	flags   *Flags
	compact bool
}

// NewTimerCmd creates a new timer command
func NewTimerCmd(flags *Flags) *TimerCmd {
	return &TimerCmd{flags: flags}
}

// Flags returns the timer flags for registration on the root command
func (cmd *TimerCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "compact",
			Usage:       "hide the progress bar and session counter",
			Destination: &cmd.compact,
		},
	}
}

// Register adds the timer command to the application.
func (cmd *TimerCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:   "timer",
		Usage:  "Run the interactive pomodoro timer",
		Flags:  cmd.Flags(),
		Action: cmd.run,
	})
	return app
}

// Run executes the timer. Exported for use as default command.
func (cmd *TimerCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TimerCmd) run(ctx context.Context, _ *cli.Command) error {
	app := cmd.flags.App

	armErr := app.ArmReminders(ctx)
	if armErr != nil {
		log.Warn().Err(armErr).Msg("failed to arm task reminders")
	}

	sweepCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go notifier.Sweep(sweepCtx, app.Bus, app.Config.Notifications.HistoryRetention, time.Hour, log.Logger)

	uiCfg := app.Config.TUI
	if cmd.compact {
		uiCfg.Compact = true
	}

	m := tui.New(tui.Deps{
		Timer:    app.Engine,
		Notices:  app.Notifier,
		Bus:      app.Bus,
		Identity: app.Current(),
		Config:   uiCfg,
	})

	// The model is subscribed now, so the warning shows up as a toast.
	if armErr != nil {
		app.Bus.Warnf("Reminders", "Task reminders are off: %v", armErr)
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run timer: %w", err)
	}

	return nil
}
