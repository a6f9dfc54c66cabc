// Package ui holds the lipgloss styling shared by the CLI and the TUI.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/tada/internal/model"
)

// OK prints a success line.
func OK(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Success.Render(t.SymOK+" "+msg))
}

// Fail prints an error line.
func Fail(w io.Writer, msg string) {
	t := Current()
	fmt.Fprintln(w, t.Error.Render(t.SymFail+" "+msg))
}

// Hint prints a muted line.
func Hint(w io.Writer, msg string) {
	fmt.Fprintln(w, Current().Muted.Render(msg))
}

// Panel frames inner with the current theme's border.
func Panel(inner string) string {
	t := Current()
	return lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1).
		Render(inner)
}

// TodoLine renders a todo the way every view shows it: "title --- description".
func TodoLine(td model.Todo) string {
	return td.Title + Current().Separator + td.Description
}

// TodoLines renders the list for the CLI with the id needed by `edit` and `rm`.
func TodoLines(todos []model.Todo) []string {
	t := Current()
	if len(todos) == 0 {
		return []string{t.Muted.Render("no todos")}
	}
	width := 0
	for _, td := range todos {
		if n := lipgloss.Width(td.ID.String()); n > width {
			width = n
		}
	}
	out := make([]string, 0, len(todos))
	for _, td := range todos {
		id := td.ID.String()
		pad := strings.Repeat(" ", width-lipgloss.Width(id))
		out = append(out, fmt.Sprintf("%s%s  %s", t.Muted.Render(id), pad, TodoLine(td)))
	}
	return out
}

// Header renders the list title with the item count.
func Header(n int) string {
	t := Current()
	noun := "todos"
	if n == 1 {
		noun = "todo"
	}
	return fmt.Sprintf("%s  %s", t.Title.Render("Todos"), t.Accent.Render(fmt.Sprintf("%d %s", n, noun)))
}
