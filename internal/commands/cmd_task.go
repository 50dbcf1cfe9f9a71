package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/colonyops/tempo/internal/core/styles"
	"github.com/colonyops/tempo/internal/core/task"
	"github.com/colonyops/tempo/internal/tempo"
	"github.com/colonyops/tempo/pkg/iojson"
	"github.com/urfave/cli/v3"
)

// TaskCmd implements the tempo task command group.
type TaskCmd struct {
	flags *Flags

	// add/edit flags
	title       string
	description string
	due         string
	clearDue    bool
	priority    string
	remind      bool
	interactive bool

	// list flags
	listDate     string
	listPriority string
	listOpen     bool

	// show flags
	showJSON bool

	// clear flags
	yes bool

	importReader iojson.FileReader[[]task.Task]
}

// NewTaskCmd creates a new task command.
func NewTaskCmd(flags *Flags) *TaskCmd {
	return &TaskCmd{flags: flags}
}

func (cmd *TaskCmd) tasks() *tempo.TaskService {
	return cmd.flags.App.Tasks
}

// Register adds the task command to the application.
func (cmd *TaskCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "task",
		Usage: "Manage tasks and their reminders",
		Description: `Task commands for the signed-in identity.

A task with a future due date and --remind gets a reminder at the due time
while 'tempo timer' is running.

Examples:
  tempo task add --title "Write report" --due "2030-03-12 17:00" --remind
  tempo task add -i                     # fill in a form
  tempo task ls --date 2030-03-12       # tasks due that day
  tempo task done <id>                  # toggle completion
  tempo task import -f tasks.json`,
		Commands: []*cli.Command{
			cmd.addCmd(),
			cmd.listCmd(),
			cmd.showCmd(),
			cmd.editCmd(),
			cmd.doneCmd(),
			cmd.removeCmd(),
			cmd.clearCmd(),
			cmd.importCmd(),
		},
	})

	return app
}

func (cmd *TaskCmd) addCmd() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a task",
		UsageText: "tempo task add --title <title> [--description <text>] [--due <date>] [--priority <p>] [--remind]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "title",
				Aliases:     []string{"t"},
				Usage:       "task title",
				Destination: &cmd.title,
			},
			&cli.StringFlag{
				Name:        "description",
				Aliases:     []string{"d"},
				Usage:       "task description (markdown)",
				Destination: &cmd.description,
			},
			&cli.StringFlag{
				Name:        "due",
				Usage:       "due date (YYYY-MM-DD, \"YYYY-MM-DD HH:MM\", RFC 3339 or +<duration>)",
				Destination: &cmd.due,
			},
			&cli.StringFlag{
				Name:        "priority",
				Aliases:     []string{"p"},
				Usage:       "priority (high, medium, low)",
				Value:       string(task.PriorityMedium),
				Destination: &cmd.priority,
			},
			&cli.BoolFlag{
				Name:        "remind",
				Aliases:     []string{"r"},
				Usage:       "remind me at the due date",
				Destination: &cmd.remind,
			},
			&cli.BoolFlag{
				Name:        "interactive",
				Aliases:     []string{"i"},
				Usage:       "fill in the task with a form",
				Destination: &cmd.interactive,
			},
		},
		Action: cmd.runAdd,
	}
}

func (cmd *TaskCmd) listCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List tasks as JSON lines",
		UsageText: "tempo task ls [--date <YYYY-MM-DD>] [--priority <p>] [--open]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "date",
				Usage:       "only tasks due on this day (YYYY-MM-DD)",
				Destination: &cmd.listDate,
			},
			&cli.StringFlag{
				Name:        "priority",
				Aliases:     []string{"p"},
				Usage:       "only tasks with this priority",
				Destination: &cmd.listPriority,
			},
			&cli.BoolFlag{
				Name:        "open",
				Usage:       "hide completed tasks",
				Destination: &cmd.listOpen,
			},
		},
		Action: cmd.runList,
	}
}

func (cmd *TaskCmd) showCmd() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a task",
		UsageText: "tempo task show <id> [--json]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the task as JSON",
				Destination: &cmd.showJSON,
			},
		},
		Action: cmd.runShow,
	}
}

func (cmd *TaskCmd) editCmd() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Change fields of a task",
		UsageText: "tempo task edit <id> [--title <t>] [--description <d>] [--due <date> | --clear-due] [--priority <p>] [--remind=<bool>]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "new title", Destination: &cmd.title},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "new description", Destination: &cmd.description},
			&cli.StringFlag{Name: "due", Usage: "new due date", Destination: &cmd.due},
			&cli.BoolFlag{Name: "clear-due", Usage: "remove the due date", Destination: &cmd.clearDue},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "new priority", Destination: &cmd.priority},
			&cli.BoolFlag{Name: "remind", Aliases: []string{"r"}, Usage: "turn the reminder on or off", Destination: &cmd.remind},
		},
		Action: cmd.runEdit,
	}
}

func (cmd *TaskCmd) doneCmd() *cli.Command {
	return &cli.Command{
		Name:      "done",
		Usage:     "Toggle a task's completion",
		UsageText: "tempo task done <id>",
		Action:    cmd.runDone,
	}
}

func (cmd *TaskCmd) removeCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a task",
		UsageText: "tempo task rm <id>",
		Action:    cmd.runRemove,
	}
}

func (cmd *TaskCmd) clearCmd() *cli.Command {
	return &cli.Command{
		Name:      "clear",
		Usage:     "Delete every task",
		UsageText: "tempo task clear [--yes]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "skip the confirmation",
				Destination: &cmd.yes,
			},
		},
		Action: cmd.runClear,
	}
}

func (cmd *TaskCmd) importCmd() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Add tasks from a JSON array",
		UsageText: "tempo task import [-f tasks.json]",
		Description: `Reads a JSON array of tasks from a file or stdin and adds them in order.

Each element uses the same fields as 'tempo task ls' prints; id, owner,
completed and timestamps are ignored.

Examples:
  tempo task import -f tasks.json
  tempo task ls | jq -s . | tempo task import`,
		Flags:  []cli.Flag{cmd.importReader.Flag()},
		Action: cmd.runImport,
	}
}

func (cmd *TaskCmd) runAdd(ctx context.Context, c *cli.Command) error {
	t := task.Task{
		Title:       cmd.title,
		Description: cmd.description,
		Priority:    task.Priority(cmd.priority),
		Reminder:    cmd.remind,
	}

	if cmd.interactive {
		if err := cmd.fillForm(&t); err != nil {
			return err
		}
	} else if cmd.due != "" {
		due, err := parseDue(cmd.due, time.Now())
		if err != nil {
			return err
		}
		t.DueDate = &due
	}

	added, err := cmd.tasks().Add(ctx, t)
	if err != nil {
		return signedIn(err)
	}

	return iojson.WriteLine(c.Root().Writer, added)
}

func (cmd *TaskCmd) fillForm(t *task.Task) error {
	var (
		due      = cmd.due
		priority = string(t.Priority)
	)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&t.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("title is required")
					}
					return nil
				}),
			huh.NewText().
				Title("Description").
				Value(&t.Description),
			huh.NewInput().
				Title("Due").
				Description("YYYY-MM-DD, YYYY-MM-DD HH:MM or +2h; empty for none").
				Value(&due).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					_, err := parseDue(s, time.Now())
					return err
				}),
			huh.NewSelect[string]().
				Title("Priority").
				Options(huh.NewOptions(string(task.PriorityHigh), string(task.PriorityMedium), string(task.PriorityLow))...).
				Value(&priority),
			huh.NewConfirm().
				Title("Remind me at the due date?").
				Value(&t.Reminder),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("task form: %w", err)
	}

	t.Priority = task.Priority(priority)
	if strings.TrimSpace(due) != "" {
		d, err := parseDue(due, time.Now())
		if err != nil {
			return err
		}
		t.DueDate = &d
	}
	return nil
}

func (cmd *TaskCmd) runList(ctx context.Context, c *cli.Command) error {
	tasks, err := cmd.listTasks(ctx)
	if err != nil {
		return signedIn(err)
	}

	task.SortForList(tasks)

	for _, t := range tasks {
		if cmd.listOpen && t.Completed {
			continue
		}
		if err := iojson.WriteLine(c.Root().Writer, t); err != nil {
			return err
		}
	}

	return nil
}

// listTasks applies the --date and --priority filters.
func (cmd *TaskCmd) listTasks(ctx context.Context) ([]task.Task, error) {
	var p task.Priority
	if cmd.listPriority != "" {
		p = task.Priority(cmd.listPriority)
		if !p.IsValid() {
			return nil, fmt.Errorf("invalid priority %q: must be one of high, medium, low", cmd.listPriority)
		}
	}

	if cmd.listDate == "" {
		return cmd.tasks().ByPriority(ctx, p)
	}

	day, err := parseDay(cmd.listDate)
	if err != nil {
		return nil, err
	}

	tasks, err := cmd.tasks().ByDate(ctx, day)
	if err != nil {
		return nil, err
	}
	return task.FilterByPriority(tasks, p), nil
}

func (cmd *TaskCmd) runShow(ctx context.Context, c *cli.Command) error {
	id, err := taskIDArg(c)
	if err != nil {
		return err
	}

	t, err := cmd.tasks().Get(ctx, id)
	if err != nil {
		return signedIn(err)
	}

	if cmd.showJSON {
		return iojson.WriteWith(c.Root().Writer, os.Stderr, t)
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styles.GlamourStyle()),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	out, err := r.Render(taskMarkdown(t))
	if err != nil {
		return fmt.Errorf("render task: %w", err)
	}

	_, err = fmt.Fprint(c.Root().Writer, out)
	return err
}

func taskMarkdown(t task.Task) string {
	var b strings.Builder

	title := t.Title
	if t.Completed {
		title = "~~" + title + "~~"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	fmt.Fprintf(&b, "- **ID:** `%s`\n", t.ID)
	fmt.Fprintf(&b, "- **Priority:** %s\n", t.Priority)
	if t.DueDate != nil {
		fmt.Fprintf(&b, "- **Due:** %s\n", t.DueDate.Local().Format("Mon Jan 2 2006 15:04"))
	}
	if t.Reminder {
		b.WriteString("- **Reminder:** on\n")
	}
	status := "open"
	if t.Completed {
		status = "done"
	}
	fmt.Fprintf(&b, "- **Status:** %s\n", status)

	if t.Description != "" {
		b.WriteString("\n")
		b.WriteString(t.Description)
		b.WriteString("\n")
	}

	return b.String()
}

func (cmd *TaskCmd) runEdit(ctx context.Context, c *cli.Command) error {
	id, err := taskIDArg(c)
	if err != nil {
		return err
	}

	var patch task.Patch
	if c.IsSet("title") {
		patch.Title = &cmd.title
	}
	if c.IsSet("description") {
		patch.Description = &cmd.description
	}
	if c.IsSet("due") {
		due, err := parseDue(cmd.due, time.Now())
		if err != nil {
			return err
		}
		patch.DueDate = &due
	}
	patch.ClearDueDate = cmd.clearDue
	if c.IsSet("priority") {
		p := task.Priority(cmd.priority)
		patch.Priority = &p
	}
	if c.IsSet("remind") {
		patch.Reminder = &cmd.remind
	}

	updated, err := cmd.tasks().Update(ctx, id, patch)
	if err != nil {
		return signedIn(err)
	}

	return iojson.WriteLine(c.Root().Writer, updated)
}

func (cmd *TaskCmd) runDone(ctx context.Context, c *cli.Command) error {
	id, err := taskIDArg(c)
	if err != nil {
		return err
	}

	t, err := cmd.tasks().ToggleCompletion(ctx, id)
	if err != nil {
		return signedIn(err)
	}

	return iojson.WriteLine(c.Root().Writer, t)
}

func (cmd *TaskCmd) runRemove(ctx context.Context, c *cli.Command) error {
	id, err := taskIDArg(c)
	if err != nil {
		return err
	}

	if err := cmd.tasks().Delete(ctx, id); err != nil {
		return signedIn(err)
	}

	_, _ = fmt.Fprintln(c.Root().Writer, "deleted")
	return nil
}

func (cmd *TaskCmd) runClear(ctx context.Context, c *cli.Command) error {
	if !cmd.yes {
		confirmed := false
		err := huh.NewConfirm().
			Title("Delete every task?").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return fmt.Errorf("confirm: %w", err)
		}
		if !confirmed {
			return nil
		}
	}

	n, err := cmd.tasks().ClearAll(ctx)
	if err != nil {
		return signedIn(err)
	}

	return iojson.WriteLine(c.Root().Writer, map[string]int64{"deleted": n})
}

func (cmd *TaskCmd) runImport(ctx context.Context, c *cli.Command) error {
	input, err := cmd.importReader.Read()
	if err != nil {
		return err
	}

	added, err := cmd.tasks().Import(ctx, input)
	for _, t := range added {
		if werr := iojson.WriteLine(c.Root().Writer, t); werr != nil {
			return werr
		}
	}

	return signedIn(err)
}

func taskIDArg(c *cli.Command) (string, error) {
	if c.NArg() < 1 {
		return "", fmt.Errorf("usage: %s <id>", c.FullName())
	}
	return c.Args().Get(0), nil
}
