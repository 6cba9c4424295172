package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/TWRT/join-board/internal/models"
)

// NewSubtaskCommand creates the subtask command group.
func NewSubtaskCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "Toggle, edit or delete subtasks",
	}

	cmd.AddCommand(newSubtaskToggleCommand(rootOpts))
	cmd.AddCommand(newSubtaskEditCommand(rootOpts))
	cmd.AddCommand(newSubtaskDeleteCommand(rootOpts))
	return cmd
}

func newSubtaskToggleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <subtask-id> <done>",
		Short: "Mark a subtask done or open",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			done, err := strconv.ParseBool(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid done value %q", args[1]))
			}
			return withBoard(rootOpts, cmd, func(ctx context.Context, a *app) error {
				id := models.ID(args[0])
				sub, err := a.store.Subtask(id)
				if err != nil {
					return err
				}
				if err := a.edit.ToggleSubtask(ctx, id, done); err != nil {
					return err
				}
				return printTask(a, sub.Task)
			})
		},
	}
}

// openForEdit puts taskID into edit mode, as the popup does before its
// subtask rows can change.
func openForEdit(a *app, taskID models.ID) error {
	if _, err := a.edit.Open(taskID); err != nil {
		return err
	}
	_, err := a.edit.BeginEdit()
	return err
}

func newSubtaskEditCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <task-id> <subtask-id> <content>",
		Short: "Change the content of a subtask",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(rootOpts, cmd, func(ctx context.Context, a *app) error {
				taskID, id := models.ID(args[0]), models.ID(args[1])
				if err := openForEdit(a, taskID); err != nil {
					return err
				}
				if _, err := a.edit.BeginSubtaskEdit(id); err != nil {
					return err
				}
				if err := a.edit.CommitSubtaskEdit(ctx, id, args[2]); err != nil {
					return err
				}
				return printTask(a, taskID)
			})
		},
	}
}

func newSubtaskDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id> <subtask-id>",
		Short: "Delete a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(rootOpts, cmd, func(ctx context.Context, a *app) error {
				taskID := models.ID(args[0])
				if err := openForEdit(a, taskID); err != nil {
					return err
				}
				if err := a.edit.DeleteSubtask(ctx, models.ID(args[1])); err != nil {
					return err
				}
				return printTask(a, taskID)
			})
		},
	}
}
