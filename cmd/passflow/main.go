// Command passflow runs a seat reservation command file and writes the
// results next to it.
//
//	passflow <input_file>
//
// Output goes to "<input_file without extension>_output_file.txt". With
// EVENTS_ENABLED=true every seat change is also published to the broker.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/akvarun/PassFlow/internal/command"
	"github.com/akvarun/PassFlow/internal/config"
	"github.com/akvarun/PassFlow/internal/engine"
	"github.com/akvarun/PassFlow/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// outputPath maps "dir/input.txt" to "dir/input_output_file.txt".
func outputPath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "_output_file.txt"
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "usage: passflow <input_file>")
		return 1
	}
	cfg := config.Load()
	logger := config.NewLogger("passflow", cfg.LogLevel)
	logger.SetOutput(stderr)

	in, err := os.Open(args[0])
	if err != nil {
		logger.Errorf("open input: %v", err)
		return 1
	}
	defer in.Close()

	outPath := outputPath(args[0])
	out, err := os.Create(outPath)
	if err != nil {
		logger.Errorf("create output: %v", err)
		return 1
	}

	var observers []command.Observer
	if cfg.EventsEnabled {
		pub := service.NewPublisher(cfg.BrokerURL, cfg.EventQueue, "batch", logger)
		defer pub.Close()
		observers = append(observers, pub)
	}

	runner := command.NewRunner(command.NewDispatcher(engine.New()), logger, observers...)
	st, runErr := runner.Run(ctx, in, out)
	if err := out.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("close output: %w", err)
	}
	if runErr != nil {
		logger.Errorf("run %s: %v", args[0], runErr)
		return 1
	}
	logger.Infof("processed %d lines: %d executed, %d skipped, quit=%t", st.Lines, st.Executed, st.Skipped, st.Quit)
	fmt.Fprintf(stdout, "Output has been written to %s\n", outPath)
	return 0
}
