package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputPath(t *testing.T) {
	tests := map[string]string{
		"input.txt":         "input_output_file.txt",
		"dir/test1.txt":     "dir/test1_output_file.txt",
		"noext":             "noext_output_file.txt",
		"a.b/commands.data": "a.b/commands_output_file.txt",
	}
	for in, want := range tests {
		if got := outputPath(in); got != want {
			t.Errorf("outputPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRun(t *testing.T) {
	t.Setenv("EVENTS_ENABLED", "false")
	t.Setenv("DB_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "off")

	dir := t.TempDir()
	input := filepath.Join(dir, "test1.txt")
	script := strings.Join([]string{
		"Initialize(2)",
		"Reserve(1,1)",
		"Reserve(2,1)",
		"Reserve(3,1)",
		"Available()",
		"Cancel(1,1)",
		"PrintReservations()",
		"Quit()",
		"Reserve(4,1)",
	}, "\n")
	if err := os.WriteFile(input, []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{input}, &stdout, &stderr); code != 0 {
		t.Fatalf("run() = %d, stderr %s", code, stderr.String())
	}

	outPath := filepath.Join(dir, "test1_output_file.txt")
	if got, want := stdout.String(), "Output has been written to "+outPath+"\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"2 Seats are made available for reservation",
		"User 1 reserved seat 1",
		"User 2 reserved seat 2",
		"User 3 is added to the waiting list",
		"Total Seats Available : 0, Waitlist : 1",
		"User 1 canceled their reservation",
		"User 3 reserved seat 1",
		"Seat 1, User 3",
		"Seat 2, User 2",
		"Program Terminated!!",
	}, "\n") + "\n"
	if string(got) != want {
		t.Errorf("output =\n%s\nwant\n%s", got, want)
	}
}

func TestRunBadArgs(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), nil, &stdout, &stderr); code != 1 {
		t.Errorf("run() without args = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "usage") {
		t.Errorf("stderr = %q", stderr.String())
	}

	t.Setenv("LOG_LEVEL", "off")
	if code := run(context.Background(), []string{filepath.Join(t.TempDir(), "missing.txt")}, &stdout, &stderr); code != 1 {
		t.Errorf("run() with missing file = %d, want 1", code)
	}
}
