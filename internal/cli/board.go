package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/TWRT/join-board/internal/models"
	"github.com/TWRT/join-board/internal/render"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the board",
		Long:  "Load the board and print its four columns. --search keeps only tasks whose title contains the query.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(rootOpts, cmd, func(_ context.Context, a *app) error {
				view := a.board.Board(search)
				return a.out.Print(view, func(w io.Writer) error {
					return render.WriteBoard(w, view)
				})
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "filter tasks by title")
	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task with its subtasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBoard(rootOpts, cmd, func(_ context.Context, a *app) error {
				detail, err := a.edit.Open(models.ID(args[0]))
				if err != nil {
					return err
				}
				return printDetail(a, detail)
			})
		},
	}
}

func printDetail(a *app, detail render.Detail) error {
	return a.out.Print(detail, func(w io.Writer) error {
		return render.WriteDetail(w, detail)
	})
}

// printTask renders the cached task after a mutation.
func printTask(a *app, id models.ID) error {
	detail, err := a.board.Renderer().Detail(id)
	if err != nil {
		return err
	}
	return printDetail(a, detail)
}
