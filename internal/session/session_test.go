package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo/internal/session"
)

func TestManager_SignInSignOut(t *testing.T) {
	m := session.NewManager("")

	_, ok := m.CurrentOwnerID()
	assert.False(t, ok)

	require.NoError(t, m.SignIn("alice"))
	owner, ok := m.CurrentOwnerID()
	assert.True(t, ok)
	assert.Equal(t, "alice", owner)

	require.NoError(t, m.SignOut())
	_, ok = m.CurrentOwnerID()
	assert.False(t, ok)
}

func TestManager_SignInRejectsBlankOwner(t *testing.T) {
	m := session.NewManager("")

	assert.Error(t, m.SignIn("   "))
}

func TestManager_NotifiesSubscribers(t *testing.T) {
	m := session.NewManager("alice")

	var got []string
	unsubscribe := m.OnOwnerChanged(func(owner string) { got = append(got, owner) })

	require.NoError(t, m.SignIn("alice")) // unchanged, no notification
	require.NoError(t, m.SignIn("bob"))
	require.NoError(t, m.SignOut())

	unsubscribe()
	require.NoError(t, m.SignIn("carol"))

	assert.Equal(t, []string{"bob", ""}, got)
}

func TestOpen_PersistsOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	m, err := session.Open(path)
	require.NoError(t, err)
	_, ok := m.CurrentOwnerID()
	assert.False(t, ok, "missing file means signed out")

	require.NoError(t, m.SignIn("alice"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := session.Open(path)
	require.NoError(t, err)
	owner, ok := reopened.CurrentOwnerID()
	assert.True(t, ok)
	assert.Equal(t, "alice", owner)

	require.NoError(t, reopened.SignOut())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestOpen_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := session.Open(path)
	assert.Error(t, err)
}
