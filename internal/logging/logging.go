// Package logging builds the debug logger used across the CLI.
package logging

import (
	"io"
	"log"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
)

// New returns a logger writing to w when debug is set, and a discarding
// logger otherwise. Debug output includes V(1) messages.
func New(w io.Writer, debug bool) logr.Logger {
	if !debug {
		return logr.Discard()
	}
	stdr.SetVerbosity(1)
	return stdr.NewWithOptions(log.New(w, "debug: ", log.LstdFlags), stdr.Options{}).WithName("todo")
}
