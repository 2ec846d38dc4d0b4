package config

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"testing"
)

func TestWriteExitAppendsNewline(t *testing.T) {
	var buf bytes.Buffer
	writeExit(&buf, "calculator: %s on %d", "listen failed", 8090)
	if got := buf.String(); got != "calculator: listen failed on 8090\n" {
		t.Fatalf("output = %q", got)
	}
}

// os.Exit cannot be observed in-process, so the test re-runs itself.
func TestExitfExitsWithStatusOne(t *testing.T) {
	if os.Getenv("TALLY_TEST_EXITF") == "1" {
		Exitf("Error: %v", "scenario path is required")
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestExitfExitsWithStatusOne$")
	cmd.Env = append(os.Environ(), "TALLY_TEST_EXITF=1")
	out, err := cmd.CombinedOutput()

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		t.Fatalf("err = %T %v, want *exec.ExitError", err, err)
	}
	if exitErr.ExitCode() != 1 {
		t.Fatalf("exit code = %d, want 1", exitErr.ExitCode())
	}
	if !strings.Contains(string(out), "Error: scenario path is required") {
		t.Fatalf("output = %q", out)
	}
}
