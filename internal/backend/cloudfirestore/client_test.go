package cloudfirestore_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/backend/cloudfirestore"
	"todo/internal/service"
)

// newEmulatorClient connects to the Firestore emulator, skipping the test when
// FIRESTORE_EMULATOR_HOST is not set.
func newEmulatorClient(t *testing.T) *cloudfirestore.Client {
	t.Helper()

	if os.Getenv(cloudfirestore.EmulatorHostEnv) == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	c, err := cloudfirestore.NewWithOptions(context.Background(), "demo-todo", fmt.Sprintf("users-%d", time.Now().UnixNano()))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestEmulator_DocumentLifecycle(t *testing.T) {
	c := newEmulatorClient(t)
	ctx := context.Background()

	_, err := c.GetDocument(ctx, "alice")
	require.ErrorIs(t, err, service.ErrNotFound)

	require.NoError(t, c.CreateDocument(ctx, "alice", "alice", nil))
	require.ErrorIs(t, c.CreateDocument(ctx, "alice", "alice", nil), service.ErrAlreadyExists)

	require.NoError(t, c.SetFields(ctx, "alice", "alice", map[string]string{"task1": "a", "task2": "b"}))
	require.NoError(t, c.DeleteField(ctx, "alice", "alice", "task2"))

	doc, err := c.GetDocument(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", doc.ID)
	assert.Equal(t, map[string]any{"task1": "a"}, doc.Fields)
}

func TestEmulator_SetFieldsMissingDocument(t *testing.T) {
	c := newEmulatorClient(t)

	err := c.SetFields(context.Background(), "bob", "bob", map[string]string{"task1": "a"})

	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestRejectsForeignDocument(t *testing.T) {
	c := newEmulatorClient(t)

	err := c.SetFields(context.Background(), "alice", "bob", map[string]string{"task1": "a"})

	assert.Error(t, err)
}
