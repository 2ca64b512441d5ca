package positional_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/positional"
	"todo/internal/testutil"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name   string
		want   int
		wantOK bool
	}{
		{"task1", 1, true},
		{"task12", 12, true},
		{"task", 0, false},
		{"task-1", 0, false},
		{"task+1", 0, false},
		{"task1a", 0, false},
		{"Task1", 0, false},
		{"tasks", 0, false},
		{"email", 0, false},
		{"task99999999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := positional.ParseKey(tt.name)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_SortsNumerically(t *testing.T) {
	fields := map[string]any{
		"task10": "ten",
		"task2":  "two",
		"task1":  "one",
	}

	tasks := positional.Decode(fields)

	assert.Equal(t, []string{"one", "two", "ten"}, testutil.Texts(tasks))
	assert.Equal(t, "task10", tasks[2].Key)
}

func TestDecode_IgnoresUnrelatedFields(t *testing.T) {
	fields := map[string]any{
		"task1":     "buy milk",
		"task2":     42,
		"email":     "someone@example.com",
		"taskCount": "3",
		"task3":     nil,
	}

	tasks := positional.Decode(fields)

	require.Len(t, tasks, 1)
	assert.Equal(t, positional.Task{Key: "task1", Text: "buy milk"}, tasks[0])
}

func TestDecode_Empty(t *testing.T) {
	assert.Empty(t, positional.Decode(nil))
	assert.Empty(t, positional.Decode(map[string]any{}))
}

func TestEncode(t *testing.T) {
	tasks := []positional.Task{{Text: "a"}, {Text: "b", Editing: true}}

	assert.Equal(t, map[string]string{"task1": "a", "task2": "b"}, positional.Encode(tasks))
}

func TestRoundTrip(t *testing.T) {
	lists := [][]string{
		{},
		{"water plants"},
		{"buy milk", "call mom"},
		{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"},
		{"same", "same", "same"},
	}

	for _, texts := range lists {
		tasks := make([]positional.Task, len(texts))
		for i, text := range texts {
			tasks[i] = positional.Task{Text: text}
		}

		fields := make(map[string]any)
		for k, v := range positional.Encode(tasks) {
			fields[k] = v
		}

		decoded := positional.Decode(fields)
		assert.Equal(t, texts, testutil.Texts(decoded))
		assert.NoError(t, positional.Check(decoded))
	}
}

func TestDiff(t *testing.T) {
	before := map[string]string{"task1": "a", "task2": "b", "task3": "c"}
	after := map[string]string{"task1": "a", "task2": "B", "task3": "c"}

	assert.Equal(t, map[string]string{"task2": "B"}, positional.Diff(before, after))
	assert.Empty(t, positional.Diff(before, before))
}

func TestCheck_ReportsGap(t *testing.T) {
	tasks := positional.Decode(map[string]any{"task1": "a", "task3": "c"})

	err := positional.Check(tasks)

	var gap *positional.GapError
	require.True(t, errors.As(err, &gap))
	assert.Equal(t, 1, gap.Position)
	assert.Equal(t, "task2", gap.Want)
	assert.Equal(t, "task3", gap.Got)
}

func TestCheck_DuplicateTextIsNotAGap(t *testing.T) {
	// Shape left behind by an interrupted remove.
	tasks := positional.Decode(map[string]any{"task1": "a", "task2": "c", "task3": "c"})

	assert.NoError(t, positional.Check(tasks))
	assert.Equal(t, []string{"a", "c", "c"}, testutil.Texts(tasks))
}
