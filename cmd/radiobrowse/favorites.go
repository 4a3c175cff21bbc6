package main

import (
	"fmt"

	"radiobrowse/internal/config"

	"github.com/spf13/cobra"
)

var (
	favoritesCmd = &cobra.Command{
		Use:   "favorites",
		Short: "Manage favorite stations",
	}

	favoritesListCmd = &cobra.Command{
		Use:   "list",
		Short: "List favorite station UUIDs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if len(cfg.Favorites) == 0 {
				fmt.Println("No favorites saved.")
				return nil
			}
			for _, uuid := range cfg.Favorites {
				fmt.Println(uuid)
			}
			return nil
		},
	}

	favoritesAddCmd = &cobra.Command{
		Use:   "add UUID",
		Short: "Add a station to favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.IsFavorite(args[0]) {
				fmt.Println("Already a favorite.")
				return nil
			}
			cfg.ToggleFavorite(args[0])
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Println("Added.")
			return nil
		},
	}

	favoritesRemoveCmd = &cobra.Command{
		Use:   "remove UUID",
		Short: "Remove a station from favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.IsFavorite(args[0]) {
				fmt.Println("Not a favorite.")
				return nil
			}
			cfg.ToggleFavorite(args[0])
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Println("Removed.")
			return nil
		},
	}
)

func init() {
	favoritesCmd.AddCommand(favoritesListCmd, favoritesAddCmd, favoritesRemoveCmd)
	rootCmd.AddCommand(favoritesCmd)
}
