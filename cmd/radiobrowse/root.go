package main

import (
	"fmt"
	"os"
	"path/filepath"

	"radiobrowse/internal/cache"
	"radiobrowse/internal/config"
	"radiobrowse/internal/version"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var debugFlag bool

var rootCmd = &cobra.Command{
	Use:     "radiobrowse",
	Short:   config.AppDescription,
	Long:    config.AppName + " finds stations in the radio-browser.info directory, verifies that their streams are actually alive, and records them to disk.",
	Version: version.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
}

// setupLogging mirrors the app's two logging modes: quiet error-only output
// on stderr by default, or full debug output to a log file under the cache
// directory so verbose runs stay readable.
func setupLogging() {
	if !debugFlag {
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
		return
	}

	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	cacheDir, err := cache.GetCacheDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not get cache dir: %v\n", err)
		cacheDir = os.TempDir()
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log dir: %v\n", err)
	}

	logPath := filepath.Join(cacheDir, "debug.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log file: %v\n", err)
		logFile = os.Stderr
	} else {
		fmt.Printf("Debug log: %s\n", logPath)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: logFile, TimeFormat: "15:04:05"})
	log.Info().Msgf("Starting %s v%s (debug mode)", config.AppName, version.Version)
}

// newListingCache builds the disk cache used for countries/languages
// listings. Failure to create it only disables caching.
func newListingCache() *cache.Cache {
	c, err := cache.NewCache()
	if err != nil {
		log.Debug().Err(err).Msg("Listing cache unavailable")
		return nil
	}
	if err := c.CleanExpired(); err != nil {
		log.Debug().Err(err).Msg("Cache cleanup failed")
	}
	return c
}
