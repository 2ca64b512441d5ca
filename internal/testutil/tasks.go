package testutil

import "todo/internal/positional"

// Texts returns the task texts in order.
func Texts(tasks []positional.Task) []string {
	texts := make([]string, len(tasks))
	for i, t := range tasks {
		texts[i] = t.Text
	}
	return texts
}
