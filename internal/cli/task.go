package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/TWRT/join-board/internal/models"
	"github.com/TWRT/join-board/internal/service"
)

type taskFlags struct {
	title       string
	description string
	date        string
	priority    string
	category    string
	assignees   []string
	subtasks    []string
}

func (f *taskFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "task title")
	cmd.Flags().StringVar(&f.description, "description", "", "task description")
	cmd.Flags().StringVar(&f.date, "date", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Urgent, Medium or Low")
	cmd.Flags().StringVar(&f.category, "category", "", "to_do, in_progress, awaitt or done")
	cmd.Flags().StringSliceVar(&f.assignees, "assignee", nil, "assignee display name (repeatable)")
	cmd.Flags().StringArrayVar(&f.subtasks, "subtask", nil, "subtask content (repeatable)")
}

// apply overwrites the form with every flag the user set.
func (f *taskFlags) apply(cmd *cobra.Command, form *service.TaskForm) error {
	changed := cmd.Flags().Changed
	if changed("title") {
		form.Title = f.title
	}
	if changed("description") {
		form.Description = f.description
	}
	if changed("date") {
		form.Date = f.date
	}
	if changed("assignee") {
		form.Assignees = f.assignees
	}
	if changed("priority") {
		p, ok := models.ParsePriority(f.priority)
		if !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown priority %q", f.priority))
		}
		form.Priority = p
	}
	if changed("category") {
		c, ok := models.ParseCategory(f.category)
		if !ok {
			return NewExitError(ExitCommandError, fmt.Sprintf("unknown category %q", f.category))
		}
		form.Category = c
	}
	return nil
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &taskFlags{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var form service.TaskForm
			if err := flags.apply(cmd, &form); err != nil {
				return err
			}
			return withBoard(rootOpts, cmd, func(ctx context.Context, a *app) error {
				created, err := a.edit.CreateTask(ctx, form, flags.subtasks)
				if err != nil {
					return err
				}
				return printTask(a, created.ID)
			})
		},
	}

	flags.register(cmd)
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <category>",
		Short: "Move a task to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, ok := models.ParseCategory(args[1])
			if !ok {
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown category %q", args[1]))
			}
			return withBoard(rootOpts, cmd, func(ctx context.Context, a *app) error {
				id := models.ID(args[0])
				if err := a.edit.MoveTask(ctx, id, category); err != nil {
					return err
				}
				return printTask(a, id)
			})
		},
	}
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &taskFlags{}

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Edit a task",
		Long: `Open the edit form of a task prefilled from the board, overwrite the
fields given as flags and save. --assignee replaces the whole assignee list;
--subtask adds new subtasks with the same save.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(rootOpts, cmd, func(ctx context.Context, a *app) error {
				if _, err := a.edit.Open(models.ID(args[0])); err != nil {
					return err
				}
				view, err := a.edit.BeginEdit()
				if err != nil {
					return err
				}

				form := view.Form
				if err := flags.apply(cmd, &form); err != nil {
					return err
				}
				for _, content := range flags.subtasks {
					if _, err := a.edit.AddPendingSubtask(content); err != nil {
						return err
					}
				}

				if err := a.edit.Save(ctx, form); err != nil {
					return err
				}
				detail, err := a.edit.View()
				if err != nil {
					return err
				}
				return printDetail(a, detail)
			})
		},
	}

	flags.register(cmd)
	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(rootOpts, cmd, func(ctx context.Context, a *app) error {
				id := models.ID(args[0])
				if err := a.edit.DeleteTask(ctx, id); err != nil {
					return err
				}
				return a.out.Print(map[string]any{"deleted": id}, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "Deleted #%s\n", id)
					return err
				})
			})
		},
	}
}
