package main

import (
	"fmt"
	"os"

	"radiobrowse/internal/config"
	"radiobrowse/internal/update"
	"radiobrowse/internal/version"

	"github.com/spf13/cobra"
)

const defaultManifestURL = config.AppProjectURL + "/releases/latest/download/manifest.json"

var (
	updateManifest string
	updateDownload bool
	updateApply    bool

	updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Check for a newer release",
		Long: `Update fetches the release manifest and reports whether a newer
version is available. With --download the release artifact is fetched
and checksum-verified; with --apply the running binary is replaced.`,
		RunE: runUpdate,
	}
)

func init() {
	updateCmd.Flags().StringVar(&updateManifest, "manifest", defaultManifestURL, "Update manifest URL")
	updateCmd.Flags().BoolVar(&updateDownload, "download", false, "Download the new release")
	updateCmd.Flags().BoolVar(&updateApply, "apply", false, "Download and install the new release")

	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	u := update.New(version.Version, updateManifest)

	info, err := u.Check(cmd.Context())
	if err != nil {
		return err
	}
	if info == nil {
		fmt.Printf("Already up to date (v%s).\n", version.Version)
		return nil
	}

	fmt.Printf("Update available: v%s -> v%s\n", version.Version, info.Version)
	if info.Changelog != "" {
		fmt.Printf("\n%s\n\n", info.Changelog)
	}
	if info.Required {
		fmt.Println("This update is marked as required.")
	}

	if !updateDownload && !updateApply {
		fmt.Println("Run with --download to fetch it, or --apply to install it.")
		return nil
	}

	dest, err := u.Download(cmd.Context(), info, os.TempDir(), func(p update.Progress) {
		if p.Total > 0 {
			fmt.Printf("\rDownloading... %.0f%% (%.1f MB/s)", p.Percent, p.Speed/1024/1024)
		} else {
			fmt.Printf("\rDownloading... %d bytes", p.Downloaded)
		}
	})
	fmt.Println()
	if err != nil {
		return err
	}
	fmt.Printf("Downloaded to %s\n", dest)

	if !updateApply {
		return nil
	}

	if err := u.Apply(dest); err != nil {
		return err
	}
	fmt.Println("Update installed. Restart to use the new version.")
	return nil
}
