package output_test

import (
	"bytes"
	"errors"
	"testing"

	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/positional"
	"todo/internal/taskstore"
	"todo/internal/testutil"
)

func TestFormatTasks(t *testing.T) {
	var buf bytes.Buffer
	tasks := []positional.Task{
		{Key: "task1", Text: "buy milk"},
		{Key: "task2", Text: "call\nmom"},
		{Key: "task3", Text: "   "},
	}

	output.FormatTasks(&buf, tasks)

	testutil.GoldenString(t, "tasks", buf.String())
}

func TestFailure(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name     string
		err      error
		wantMsg  string
		wantCode int
	}{
		{
			name:     "unauthenticated",
			err:      &taskstore.OpError{Op: taskstore.OpAdd, Kind: taskstore.ErrUnauthenticated, Index: -1},
			wantMsg:  "not logged in (run: todo login)",
			wantCode: exitcode.AuthError,
		},
		{
			name:     "not found",
			err:      &taskstore.OpError{Op: taskstore.OpLoad, Kind: taskstore.ErrNotFound, Index: -1},
			wantMsg:  "no task list for this account (run: todo init)",
			wantCode: exitcode.BackendError,
		},
		{
			name:     "transport",
			err:      &taskstore.OpError{Op: taskstore.OpAdd, Kind: taskstore.ErrTransport, Index: -1, Err: cause},
			wantMsg:  "backend error: connection reset",
			wantCode: exitcode.BackendError,
		},
		{
			name:     "partial remove",
			err:      &taskstore.OpError{Op: taskstore.OpRemove, Kind: taskstore.ErrPartialRemove, Index: 1, Applied: 1, Err: cause},
			wantMsg:  "remove interrupted before it finished; reload the list and remove the task again",
			wantCode: exitcode.BackendError,
		},
		{
			name:     "out of range",
			err:      &taskstore.OpError{Op: taskstore.OpRemove, Kind: taskstore.ErrIndexOutOfRange, Index: 4},
			wantMsg:  "task number out of range: 5",
			wantCode: exitcode.UserError,
		},
		{
			name:     "other",
			err:      cause,
			wantMsg:  "backend error: connection reset",
			wantCode: exitcode.BackendError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, code := output.Failure(tt.err)
			if msg != tt.wantMsg {
				t.Errorf("expected %q, got %q", tt.wantMsg, msg)
			}
			if code != tt.wantCode {
				t.Errorf("expected exit code %d, got %d", tt.wantCode, code)
			}
		})
	}
}
