package commands

import (
	"context"
	"fmt"

	"github.com/colonyops/tempo/internal/core/identity"
	"github.com/colonyops/tempo/pkg/iojson"
	"github.com/urfave/cli/v3"
)

// AuthCmd implements login, logout and whoami.
type AuthCmd struct {
	flags *Flags
	name  string
}

// NewAuthCmd creates the identity commands.
func NewAuthCmd(flags *Flags) *AuthCmd {
	return &AuthCmd{flags: flags}
}

// Register adds login, logout and whoami to the application.
func (cmd *AuthCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "login",
			Usage:     "Sign in as an identity",
			UsageText: "tempo login <email> [--name <display name>]",
			Description: `Sets the identity tasks, settings and completed sessions are saved under.
The identity is remembered until 'tempo logout'.`,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "name",
					Aliases:     []string{"n"},
					Usage:       "display name",
					Destination: &cmd.name,
				},
			},
			Action: cmd.runLogin,
		},
		&cli.Command{
			Name:   "logout",
			Usage:  "Sign out",
			Action: cmd.runLogout,
		},
		&cli.Command{
			Name:   "whoami",
			Usage:  "Print the signed-in identity",
			Action: cmd.runWhoami,
		},
	)

	return app
}

func (cmd *AuthCmd) runLogin(ctx context.Context, c *cli.Command) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: tempo login <email>")
	}

	id := identity.New(c.Args().Get(0), cmd.name)
	if err := cmd.flags.App.Login(ctx, id); err != nil {
		return err
	}

	return iojson.WriteLine(c.Root().Writer, id)
}

func (cmd *AuthCmd) runLogout(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.App.Logout(ctx); err != nil {
		return err
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "signed out")
	return nil
}

func (cmd *AuthCmd) runWhoami(_ context.Context, c *cli.Command) error {
	id := cmd.flags.App.Current()
	if id.IsZero() {
		return cli.Exit("not signed in", 1)
	}

	return iojson.WriteLine(c.Root().Writer, id)
}
