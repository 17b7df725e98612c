// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})

	addConfigFlags(rootCmd.PersistentFlags())
}

var rootCmd = &cobra.Command{
	Use:   "placesbot",
	Short: "chat about places and put the answers on a map",
	Long: `
placesbot asks a language model for attractions, restaurants, hotels and other
points of interest, locates every recommended place with the Google Maps
Geocoding and Places APIs, and lets you browse them on a map, export them to
KML or GeoJSON, or email the conversation.

Configuration is read from flags, the environment and a .env file:
OPENAI_API_KEY, OPENAI_MODEL, OPENAI_BASE_URL, GOOGLE_MAPS_API_KEY,
GMAIL_USER, GMAIL_APP_PASSWORD, EMAIL_TO, SMTP_HOST, SMTP_PORT.
`,
	SilenceUsage: true,
}

var Version = "dev"

func Execute(version string) {
	Version = version
	rootCmd.Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
