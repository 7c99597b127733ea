package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cookingsecret",
	Short: "Cooking Secret recipe sharing API",
	Long: `Cooking Secret serves the recipe sharing HTTP API: accounts and roles,
recipes, likes, saves, follows, comments, purchases and the cooking
assistant chat.

Configuration is read from .env and the process environment.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
