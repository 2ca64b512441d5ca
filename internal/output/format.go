// Package output provides formatters for CLI output.
package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"todo/internal/exitcode"
	"todo/internal/positional"
	"todo/internal/taskstore"
)

// FormatTask formats a task line.
// Format: "{N:>4}  {TEXT}\n" (4-wide right-aligned number, two spaces, text)
func FormatTask(w io.Writer, num int, task positional.Task) {
	fmt.Fprintf(w, "%4d  %s\n", num, NormalizeText(task.Text))
}

// FormatTasks formats every task, numbered from 1.
func FormatTasks(w io.Writer, tasks []positional.Task) {
	for i, task := range tasks {
		FormatTask(w, i+1, task)
	}
}

// NormalizeText normalizes a task text for single-line display.
// - Empty or whitespace-only text becomes "(empty)"
// - Newlines are replaced with spaces
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(empty)"
	}
	return text
}

// Failure maps an error from the task store to a short user-facing message
// and the exit code it warrants.
func Failure(err error) (string, int) {
	var opErr *taskstore.OpError
	errors.As(err, &opErr)

	switch {
	case errors.Is(err, taskstore.ErrUnauthenticated):
		return "not logged in (run: todo login)", exitcode.AuthError
	case errors.Is(err, taskstore.ErrNotFound):
		return "no task list for this account (run: todo init)", exitcode.BackendError
	case errors.Is(err, taskstore.ErrIndexOutOfRange):
		if opErr != nil {
			return fmt.Sprintf("task number out of range: %d", opErr.Index+1), exitcode.UserError
		}
		return "task number out of range", exitcode.UserError
	case errors.Is(err, taskstore.ErrPartialRemove):
		return "remove interrupted before it finished; reload the list and remove the task again", exitcode.BackendError
	case errors.Is(err, taskstore.ErrTransport) && opErr != nil && opErr.Err != nil:
		return fmt.Sprintf("backend error: %v", opErr.Err), exitcode.BackendError
	}
	return fmt.Sprintf("backend error: %v", err), exitcode.BackendError
}

// PrintFailure writes "error: <message>" to w and returns the exit code.
func PrintFailure(w io.Writer, err error) int {
	msg, code := Failure(err)
	fmt.Fprintf(w, "error: %s\n", msg)
	return code
}
