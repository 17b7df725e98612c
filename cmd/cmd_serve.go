// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/jcodagnone/placesbot/chat"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the places chatbot as a local web API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(rootCmd.PersistentFlags())
		if err != nil {
			return err
		}

		session, err := newSession(cfg, cmd, nil)
		if err != nil {
			return err
		}

		fmt.Println("🗺️  Places server starting...")
		fmt.Printf("📍 Open http://%s in your browser, POST questions to /api/ask\n", serveAddr)
		fmt.Println("🔒 Local only - not exposed to internet")

		return chat.NewServer(session).Run(serveAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "listen address")
}
