package main

import (
	"os"
	"testing"
)

func TestMain_ExitCodes(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer devNull.Close()

	oldStdout, oldStderr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = devNull, devNull
	defer func() { os.Stdout, os.Stderr = oldStdout, oldStderr }()

	t.Setenv("HOME", t.TempDir())

	os.Args = []string{"benchit", "run", "-n", "1", "true"}
	if code := Main(); code != 0 {
		t.Errorf("Expected exit code 0, got %d", code)
	}

	os.Args = []string{"benchit", "run", "--backend", "true", "true"}
	if code := Main(); code != 1 {
		t.Errorf("Expected exit code 1, got %d", code)
	}
}
