package testutil

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Golden compares output against testdata/<name>.golden.
// Run the test with -update to rewrite the golden file.
func Golden(t *testing.T, name string, got []byte) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, got)
}

// GoldenString is like Golden but takes a string.
func GoldenString(t *testing.T, name string, got string) {
	t.Helper()
	Golden(t, name, []byte(got))
}
