package main

import (
	"fmt"

	"radiobrowse/internal/directory"
	"radiobrowse/internal/station"

	"github.com/spf13/cobra"
)

var (
	searchName     string
	searchCountry  string
	searchLanguage string
	searchLimit    int
	searchOffset   int

	searchCmd = &cobra.Command{
		Use:   "search",
		Short: "Search the station directory",
		Long: `Search queries the radio-browser.info directory by name, country,
and/or language. Results are ordered by votes and deduplicated so each
station appears once at its highest bitrate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if searchName == "" && searchCountry == "" && searchLanguage == "" {
				return fmt.Errorf("at least one of --name, --country, or --language is required")
			}

			client := directory.NewClient(newListingCache())
			stations, err := client.Search(cmd.Context(), directory.SearchQuery{
				Name:     searchName,
				Country:  searchCountry,
				Language: searchLanguage,
				Limit:    searchLimit,
				Offset:   searchOffset,
			})
			if err != nil {
				return err
			}

			printStations(stations)
			return nil
		},
	}

	topLimit int

	topCmd = &cobra.Command{
		Use:   "top",
		Short: "List the most-voted stations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := directory.NewClient(newListingCache())
			stations, err := client.TopStations(cmd.Context(), topLimit)
			if err != nil {
				return err
			}

			printStations(stations)
			return nil
		},
	}

	countriesCmd = &cobra.Command{
		Use:   "countries",
		Short: "List countries known to the directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := directory.NewClient(newListingCache())
			names, err := client.Countries(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}

	languagesCmd = &cobra.Command{
		Use:   "languages",
		Short: "List languages known to the directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := directory.NewClient(newListingCache())
			names, err := client.Languages(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Println(name)
			}
			return nil
		},
	}
)

func init() {
	searchCmd.Flags().StringVar(&searchName, "name", "", "Station name to search for")
	searchCmd.Flags().StringVar(&searchCountry, "country", "", "Filter by country")
	searchCmd.Flags().StringVar(&searchLanguage, "language", "", "Filter by language")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 50, "Maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "Result offset for paging")

	topCmd.Flags().IntVar(&topLimit, "limit", 50, "Maximum number of results")

	rootCmd.AddCommand(searchCmd, topCmd, countriesCmd, languagesCmd)
}

func printStations(stations []station.Station) {
	if len(stations) == 0 {
		fmt.Println("No stations found.")
		return
	}

	for _, s := range stations {
		fmt.Printf("%s\n", s.Name)
		fmt.Printf("    uuid:     %s\n", s.UUID)
		fmt.Printf("    location: %s\n", s.Location())
		if s.Codec != "" || s.Bitrate > 0 {
			fmt.Printf("    codec:    %s", s.Codec)
			if s.Bitrate > 0 {
				fmt.Printf(" @ %d kbps", s.Bitrate)
			}
			fmt.Println()
		}
		fmt.Printf("    votes:    %d\n", s.Votes)
		fmt.Printf("    stream:   %s\n", s.StreamURL())
	}
	fmt.Printf("\n%d stations\n", len(stations))
}
