// Package positional maps an ordered task list to and from a flat document
// whose field names carry the order: task1, task2, ... taskN.
package positional

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// KeyPrefix is the field-name prefix of every positional key.
const KeyPrefix = "task"

// Task is a single list entry.
type Task struct {
	// Key is the positional field name the text is stored under (task<N>).
	Key string

	// Text is the task text as persisted.
	Text string

	// Editing is local UI state and is never persisted.
	Editing bool
}

// Key returns the positional field name for the 1-based rank n.
func Key(n int) string {
	return KeyPrefix + strconv.Itoa(n)
}

// ParseKey returns the 1-based rank encoded in a field name.
// Only task<digits> is accepted; signs, spaces and suffixes are rejected.
func ParseKey(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, KeyPrefix)
	if !ok || digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Decode selects the positional string fields of a document and returns them
// ordered by rank. Unrelated fields and non-string values are ignored.
// Gaps are not repaired; use Check to detect them.
func Decode(fields map[string]any) []Task {
	type entry struct {
		rank int
		task Task
	}

	entries := make([]entry, 0, len(fields))
	for name, value := range fields {
		text, ok := value.(string)
		if !ok {
			continue
		}
		rank, ok := ParseKey(name)
		if !ok {
			continue
		}
		entries = append(entries, entry{rank: rank, task: Task{Key: name, Text: text}})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].rank != entries[j].rank {
			return entries[i].rank < entries[j].rank
		}
		return entries[i].task.Key < entries[j].task.Key
	})

	tasks := make([]Task, len(entries))
	for i, e := range entries {
		tasks[i] = e.task
	}
	return tasks
}

// Encode renders tasks as task(i+1) -> text for every index i.
func Encode(tasks []Task) map[string]string {
	fields := make(map[string]string, len(tasks))
	for i, t := range tasks {
		fields[Key(i+1)] = t.Text
	}
	return fields
}

// Diff returns the fields of after that are missing from before or hold a
// different value there.
func Diff(before, after map[string]string) map[string]string {
	changed := make(map[string]string)
	for name, value := range after {
		if old, ok := before[name]; !ok || old != value {
			changed[name] = value
		}
	}
	return changed
}

// GapError reports decoded keys that are not exactly task1..taskN.
type GapError struct {
	// Position is the 0-based index of the first mismatching entry.
	Position int
	// Want is the key expected at Position.
	Want string
	// Got is the key found at Position.
	Got string
}

func (e *GapError) Error() string {
	return fmt.Sprintf("positional keys not contiguous: want %s at position %d, got %s", e.Want, e.Position+1, e.Got)
}

// Check verifies that tasks carry the keys task1..taskN in order.
func Check(tasks []Task) error {
	for i, t := range tasks {
		if want := Key(i + 1); t.Key != want {
			return &GapError{Position: i, Want: want, Got: t.Key}
		}
	}
	return nil
}
