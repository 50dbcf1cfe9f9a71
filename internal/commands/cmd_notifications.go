package commands

import (
	"context"

	"github.com/colonyops/tempo/pkg/iojson"
	"github.com/urfave/cli/v3"
)

// NotificationsCmd implements the tempo notifications command group.
type NotificationsCmd struct {
	flags *Flags
	limit int
}

// NewNotificationsCmd creates a new notifications command.
func NewNotificationsCmd(flags *Flags) *NotificationsCmd {
	return &NotificationsCmd{flags: flags}
}

// Register adds the notifications command to the application.
func (cmd *NotificationsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "notifications",
		Aliases: []string{"notif"},
		Usage:   "Inspect delivered notifications",
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List delivered notifications as JSON lines, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:        "limit",
						Aliases:     []string{"n"},
						Usage:       "show at most n notifications (0 for all)",
						Destination: &cmd.limit,
					},
				},
				Action: cmd.runList,
			},
			{
				Name:   "clear",
				Usage:  "Delete the notification history",
				Action: cmd.runClear,
			},
		},
	})

	return app
}

func (cmd *NotificationsCmd) runList(ctx context.Context, c *cli.Command) error {
	items, err := cmd.flags.App.Bus.History(ctx)
	if err != nil {
		return err
	}

	if cmd.limit > 0 && len(items) > cmd.limit {
		items = items[:cmd.limit]
	}

	for _, n := range items {
		if err := iojson.WriteLine(c.Root().Writer, n); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *NotificationsCmd) runClear(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.App.Bus.Clear(ctx); err != nil {
		return err
	}

	_, _ = c.Root().Writer.Write([]byte("cleared\n"))
	return nil
}
