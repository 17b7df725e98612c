// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/jcodagnone/placesbot/chat"
	"github.com/jcodagnone/placesbot/export"
	"github.com/jcodagnone/placesbot/llm"
	"github.com/jcodagnone/placesbot/places"
	"github.com/spf13/cobra"
)

type chatOptions struct {
	MapFile     string
	KMLFile     string
	GeoJSONFile string
}

var chatOpts = &chatOptions{}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive places chatbot",
	Long: `Starts an interactive session. Questions are answered by the language model
and every place in the answer is located and added to the session map.

Commands: locations, map, export, geojson, email, help, exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		cfg, err := loadConfig(rootCmd.PersistentFlags())
		if err != nil {
			return err
		}

		session, err := newSession(cfg, cmd, cmd.OutOrStdout())
		if err != nil {
			return err
		}

		log.Printf("Session %s started", session.ID)

		loop := &chat.Loop{
			Session:     session,
			MapFile:     chatOpts.MapFile,
			KMLFile:     chatOpts.KMLFile,
			GeoJSONFile: chatOpts.GeoJSONFile,
		}

		if err := loop.Run(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, ctx.Err()) {
			return err
		}

		return nil
	},
}

// newSession wires the configured collaborators. A missing OpenAI key is
// fatal, missing Maps or SMTP credentials only disable those features.
// Resolver status lines go to status, nil discards them.
func newSession(cfg *Config, cmd *cobra.Command, status io.Writer) (*chat.Session, error) {
	rec, err := cfg.recommender()
	if err != nil {
		if errors.Is(err, llm.ErrMissingAPIKey) {
			fmt.Fprintln(cmd.ErrOrStderr(), "❌ Add OPENAI_API_KEY to your .env file")
		}

		return nil, err
	}

	resolver := cfg.resolver(cmd.Context())
	resolver.Out = status

	return chat.NewSession(chat.Options{
		Recommender: rec,
		Extractor:   places.RegexExtractor{},
		Resolver:    resolver,
		Mailer:      cfg.mailer(),
	}), nil
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVar(&chatOpts.MapFile, "map-file", export.DefaultMapFile, "HTML map written by the map command")
	chatCmd.Flags().StringVar(&chatOpts.KMLFile, "kml-file", export.DefaultKMLFile, "file written by the export command")
	chatCmd.Flags().StringVar(&chatOpts.GeoJSONFile, "geojson-file", export.DefaultGeoJSONFile, "file written by the geojson command")
}
