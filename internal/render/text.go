package render

import (
	"fmt"
	"io"
	"strings"
)

// WriteBoard prints the board as plain text, one block per column.
func WriteBoard(w io.Writer, b Board) error {
	var sb strings.Builder
	if b.Query != "" {
		fmt.Fprintf(&sb, "search: %q\n\n", b.Query)
	}

	for i, col := range b.Columns {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "## %s (%d)\n", col.Title, len(col.Cards))
		if col.Placeholder != "" {
			fmt.Fprintf(&sb, "   %s\n", col.Placeholder)
		}
		for _, c := range col.Cards {
			writeCard(&sb, c)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeCard(sb *strings.Builder, c Card) {
	fmt.Fprintf(sb, "  #%s %s", c.TaskID, c.Title)
	if c.Priority != "" {
		fmt.Fprintf(sb, " [%s]", c.Priority)
	}
	sb.WriteString("\n")

	if c.Description != "" {
		fmt.Fprintf(sb, "     %s\n", c.Description)
	}
	if len(c.Badges) > 0 {
		labels := make([]string, 0, len(c.Badges)+1)
		for _, b := range c.Badges {
			labels = append(labels, b.Initials)
		}
		if c.More > 0 {
			labels = append(labels, fmt.Sprintf("+%d", c.More))
		}
		fmt.Fprintf(sb, "     people: %s\n", strings.Join(labels, " "))
	}
	if c.Progress != nil {
		fmt.Fprintf(sb, "     subtasks: %s\n", c.Progress)
	}
}

// WriteDetail prints the task popup.
func WriteDetail(w io.Writer, d Detail) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%s %s\n", d.TaskID, d.Title)
	fmt.Fprintf(&sb, "category: %s\n", d.CategoryTitle)
	if d.Priority != "" {
		fmt.Fprintf(&sb, "priority: %s\n", d.Priority)
	}
	if d.Date != "" {
		fmt.Fprintf(&sb, "due: %s\n", d.Date)
	}
	if d.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", d.Description)
	}

	if len(d.Assignees) > 0 {
		sb.WriteString("\nassigned:\n")
		for _, b := range d.Assignees {
			fmt.Fprintf(&sb, "  %-2s %s\n", b.Initials, b.Name)
		}
	}

	if len(d.Subtasks) > 0 {
		fmt.Fprintf(&sb, "\nsubtasks (%s):\n", d.Progress)
		for _, s := range d.Subtasks {
			mark := " "
			if s.Done {
				mark = "x"
			}
			fmt.Fprintf(&sb, "  [%s] %s (#%s)\n", mark, s.Content, s.ID)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
