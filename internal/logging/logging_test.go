package logging_test

import (
	"bytes"
	"strings"
	"testing"

	"todo/internal/logging"
)

func TestNew_DebugWritesVerbose(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, true)

	log.V(1).Info("loaded", "tasks", 3)

	if !strings.Contains(buf.String(), `"msg"="loaded"`) {
		t.Errorf("expected debug output, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"tasks"=3`) {
		t.Errorf("expected key/value in output, got %q", buf.String())
	}
}

func TestNew_NoDebugDiscards(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, false)

	log.Info("hidden")
	log.V(1).Info("hidden")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}
