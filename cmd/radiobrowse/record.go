package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"radiobrowse/internal/config"
	"radiobrowse/internal/instance"
	"radiobrowse/internal/probe"
	"radiobrowse/internal/recorder"

	"github.com/spf13/cobra"
)

var (
	recordOutput   string
	recordDuration time.Duration
	recordForce    bool

	recordCmd = &cobra.Command{
		Use:   "record URL",
		Short: "Record a stream to a local file",
		Long: `Record captures a stream to disk. The URL is probed first and the
recording is refused when the stream does not check out; --force skips
the probe. Recording runs until the stream ends, the duration elapses,
or the process receives an interrupt.`,
		Args: cobra.ExactArgs(1),
		RunE: runRecord,
	}
)

func init() {
	recordCmd.Flags().StringVarP(&recordOutput, "output", "o", "", "Output file path (default: recordings dir with a timestamped name)")
	recordCmd.Flags().DurationVarP(&recordDuration, "duration", "d", 0, "Stop after this long (0 records until interrupted)")
	recordCmd.Flags().BoolVarP(&recordForce, "force", "f", false, "Record even if the stream fails the probe")

	rootCmd.AddCommand(recordCmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	url := args[0]
	ctx := cmd.Context()

	// One recorder per user; two processes writing the same default paths
	// would silently clobber each other.
	lock := instance.New("radiobrowse-record")
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer lock.Release()

	if !recordForce {
		res := probe.New().Check(ctx, url)
		if !res.Valid {
			return fmt.Errorf("stream check failed: %s (use --force to record anyway)", res.Reason)
		}
		fmt.Printf("Stream check: %s [%s]\n", res.Reason, res.Kind)
	}

	path, err := recordPath(url)
	if err != nil {
		return err
	}

	rec := recorder.New()
	if err := rec.Start(ctx, url, path); err != nil {
		return err
	}
	fmt.Printf("Recording to %s (Ctrl+C to stop)\n", path)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	finished := make(chan struct{})
	go func() {
		rec.Wait()
		close(finished)
	}()

	var timeout <-chan time.Time
	if recordDuration > 0 {
		timer := time.NewTimer(recordDuration)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-sigCh:
		fmt.Println("\nStopping...")
		rec.Stop()
	case <-timeout:
		rec.Stop()
	case <-finished:
	}

	fmt.Printf("Recorded %d bytes to %s\n", rec.BytesWritten(), path)
	return nil
}

// recordPath resolves the output file: the explicit --output flag, or a
// timestamped file in the configured recordings directory.
func recordPath(url string) (string, error) {
	if recordOutput != "" {
		return recordOutput, nil
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: using default config: %v\n", err)
	}

	dir := cfg.RecordDir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve recordings directory: %w", err)
		}
		dir = filepath.Join(home, "Recordings")
	}

	name := fmt.Sprintf("recording-%s%s", time.Now().Format("20060102-150405"), recordExt(url))
	return filepath.Join(dir, name), nil
}

func recordExt(url string) string {
	switch ext := filepath.Ext(url); ext {
	case ".mp3", ".aac", ".ogg", ".flac", ".wav", ".m4a":
		return ext
	default:
		return ".mp3"
	}
}
