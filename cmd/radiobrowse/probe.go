package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"radiobrowse/internal/probe"

	"github.com/spf13/cobra"
)

var (
	probeTimeout       time.Duration
	probeConcurrency   int
	probeNoPlayability bool
	probeJSON          bool

	probeCmd = &cobra.Command{
		Use:   "probe URL [URL...]",
		Short: "Check whether stream URLs are alive and playable",
		Long: `Probe classifies each URL with a layered check: a cheap HEAD request
first, then a GET that reads the first bytes of the body to tell a live
stream apart from an HTML error page served with a 200.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runProbe,
	}
)

func init() {
	probeCmd.Flags().DurationVarP(&probeTimeout, "timeout", "t", probe.DefaultTimeout, "Per-request timeout")
	probeCmd.Flags().IntVarP(&probeConcurrency, "concurrency", "n", probe.DefaultConcurrency, "Concurrent checks when probing multiple URLs")
	probeCmd.Flags().BoolVar(&probeNoPlayability, "no-playability", false, "Accept a recognized content type without reading stream data")
	probeCmd.Flags().BoolVar(&probeJSON, "json", false, "Print results as JSON")

	rootCmd.AddCommand(probeCmd)
}

type probeReport struct {
	URL         string `json:"url"`
	Valid       bool   `json:"valid"`
	Reason      string `json:"reason"`
	Kind        string `json:"kind"`
	ContentType string `json:"content_type,omitempty"`
	StatusCode  int    `json:"status_code,omitempty"`
}

func runProbe(cmd *cobra.Command, args []string) error {
	checker := probe.New(
		probe.WithTimeout(probeTimeout),
		probe.WithConcurrency(probeConcurrency),
		probe.WithPlayabilityCheck(!probeNoPlayability),
	)

	ctx := cmd.Context()

	var reports []probeReport
	if len(args) == 1 {
		res := checker.Check(ctx, args[0])
		reports = append(reports, toReport(args[0], res))
	} else {
		results := checker.CheckMany(ctx, args)
		for url, res := range results {
			reports = append(reports, toReport(url, res))
		}
		sort.Slice(reports, func(i, j int) bool { return reports[i].URL < reports[j].URL })
	}

	if probeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			printReport(r)
		}
	}

	if n := countInvalid(reports); n > 0 {
		return fmt.Errorf("%d of %d URLs failed the check", n, len(reports))
	}
	return nil
}

func toReport(url string, res probe.Result) probeReport {
	return probeReport{
		URL:         url,
		Valid:       res.Valid,
		Reason:      res.Reason,
		Kind:        res.Kind.String(),
		ContentType: res.ContentType,
		StatusCode:  res.StatusCode,
	}
}

func printReport(r probeReport) {
	mark := "OK "
	if !r.Valid {
		mark = "ERR"
	}
	fmt.Printf("%s  %s\n", mark, r.URL)
	fmt.Printf("     %s", r.Reason)
	if r.Valid {
		fmt.Printf(" [%s]", r.Kind)
	}
	if r.ContentType != "" {
		fmt.Printf(" (%s)", r.ContentType)
	}
	fmt.Println()
}

func countInvalid(reports []probeReport) int {
	n := 0
	for _, r := range reports {
		if !r.Valid {
			n++
		}
	}
	return n
}
