// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jcodagnone/placesbot/chat"
	"github.com/jcodagnone/placesbot/places"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugParseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Extract candidate places from a model answer",
	Long: `Reads a model answer from stdin and prints one JSON candidate per line.

$ printf '1. Wat Arun - Temple\nAddress/Area: Bangkok\n' | placesbot debug parse
{"name":"Wat Arun","address":"Bangkok"}
	`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if isatty.IsTerminal(os.Stdin.Fd()) {
			fmt.Fprintln(os.Stderr, "Paste the answer to parse, end with Ctrl-D…")
		}

		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		candidates := places.RegexExtractor{}.Extract(string(b))
		if len(candidates) == 0 {
			fmt.Fprintln(os.Stderr, "ℹ️  No records found")

			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		for _, c := range candidates {
			if err := enc.Encode(c); err != nil {
				return err
			}
		}

		return nil
	},
}

var debugGeocodeCmd = &cobra.Command{
	Use:   "geocode <query>",
	Short: "Run the geocoding strategy chain for one query",
	Long: `Builds the same query the chatbot would send for a place and prints the
resulting fix.

$ placesbot debug geocode "Wat Arun" "158 Thanon Wang Doem, Bangkok"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(rootCmd.PersistentFlags())
		if err != nil {
			return err
		}

		c := places.Candidate{Name: args[0]}
		if len(args) > 1 {
			c.Address = args[1]
		}

		query := places.BuildQuery(c, places.DefaultHints)
		fmt.Fprintf(os.Stderr, "🔎 %s\n", query)

		fix, err := cfg.resolver(cmd.Context()).Locate(cmd.Context(), query)
		if err != nil {
			return err
		}

		fmt.Printf("%s\t%.6f,%.6f\t%s\t%s\n", c.Name, fix.Point.Lat, fix.Point.Lng, fix.Method, fix.Precision)

		return nil
	},
}

var debugLimitCmd = &cobra.Command{
	Use:   "limit <question>",
	Short: "Print the number of places that would be requested for a question",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		fmt.Println(chat.ExtractLimit(strings.Join(args, " ")))
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugParseCmd)
	debugCmd.AddCommand(debugGeocodeCmd)
	debugCmd.AddCommand(debugLimitCmd)
}
