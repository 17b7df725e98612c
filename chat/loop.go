// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jcodagnone/placesbot/email"
	"github.com/jcodagnone/placesbot/export"
	"github.com/jcodagnone/placesbot/geocode"
	"github.com/jcodagnone/placesbot/llm"
	"github.com/jcodagnone/placesbot/places"
	"github.com/jcodagnone/placesbot/utils/textutils"
)

// Loop is the interactive menu around a Session.
type Loop struct {
	Session *Session

	MapFile     string
	KMLFile     string
	GeoJSONFile string

	// OpenMap renders and opens the map, defaults to export.OpenMap
	OpenMap func(path string, ps []places.Place) (string, error)
}

type command func(l *Loop, ctx context.Context, out io.Writer) (quit bool)

var commands = map[string]command{
	"exit":      (*Loop).exit,
	"locations": (*Loop).locations,
	"map":       (*Loop).showMap,
	"export":    (*Loop).exportKML,
	"geojson":   (*Loop).exportGeoJSON,
	"email":     (*Loop).email,
	"help":      (*Loop).help,
}

const separator = "--------------------------------------------------"

// Run reads lines from in until "exit", end of input or ctx is done.
func (l *Loop) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	banner := strings.Repeat("=", 50)
	fmt.Fprintln(out, banner)
	fmt.Fprintln(out, "🌍 Welcome to Places AI ChatBot!")
	fmt.Fprintln(out, banner)
	fmt.Fprintln(out, "You can ask about attractions, restaurants, hotels, museums, temples, etc.")
	fmt.Fprintln(out, "Example: 'What are the top 5 best swimming pools in Gothenburg?'")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines, readErr := readLines(ctx, in)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(out, "Type 'exit' to quit, 'help' for commands.\n\nYou: ")

		var (
			line string
			ok   bool
		)

		select {
		case <-ctx.Done():
			fmt.Fprintln(out)

			return ctx.Err()
		case line, ok = <-lines:
		}

		if !ok {
			fmt.Fprintln(out)

			return <-readErr
		}

		input := strings.TrimSpace(line)

		if cmd, ok := commands[textutils.Fold(input)]; ok {
			if cmd(l, ctx, out) {
				return nil
			}

			continue
		}

		if input == "" {
			fmt.Fprintln(out, "Please ask a question to continue.")

			continue
		}

		l.ask(ctx, out, input)
	}
}

// readLines feeds the lines of in to the returned channel, so a blocked read
// does not delay cancellation. The error channel receives exactly one value
// before lines is closed.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- ctx.Err()

				return
			}
		}

		errc <- scanner.Err()
	}()

	return lines, errc
}

func (l *Loop) ask(ctx context.Context, out io.Writer, question string) {
	fmt.Fprintln(out, "\n⏳ Fetching recommendations...")

	turn, err := l.Session.Ask(ctx, question)
	if turn == nil {
		fmt.Fprintf(out, "❌ %s\n\n", describe(err))

		return
	}

	fmt.Fprintf(out, "\n🤖 Bot:\n%s\n\n%s\n\n", turn.Answer, separator)

	if err != nil {
		fmt.Fprintf(out, "❌ %s\n\n", describe(err))

		return
	}

	fmt.Fprintln(out, "🗺️  Processing locations for map...")

	if turn.Report == nil {
		fmt.Fprintln(out, "ℹ️  Could not extract locations from response")

		return
	}

	if !turn.Report.OK() {
		fmt.Fprintln(out, "⚠️  None of the places could be located")

		return
	}

	fmt.Fprintln(out, "💡 Tip: Type 'map' to view all locations")
	fmt.Fprintln(out, "💡 Tip: Type 'locations' to see the located places")
	fmt.Fprintln(out, "💡 Tip: Type 'export' to export the locations to a file")
	fmt.Fprintln(out, "💡 Tip: Type 'email' to email the conversation log")
}

func (l *Loop) exit(_ context.Context, out io.Writer) bool {
	fmt.Fprintln(out, "Thank you for using ChatBot! Goodbye! 👋")

	return true
}

func (l *Loop) locations(_ context.Context, out io.Writer) bool {
	ps := l.Session.Places()
	if len(ps) == 0 {
		fmt.Fprintln(out, "No locations added yet.")

		return false
	}

	fmt.Fprintf(out, "📍 %d locations:\n", len(ps))

	for i, p := range ps {
		fmt.Fprintf(out, "%d. %s: (%.5f, %.5f)\n", i+1, p.Name, p.Point.Lat, p.Point.Lng)
	}

	fmt.Fprintln(out)

	return false
}

func (l *Loop) showMap(_ context.Context, out io.Writer) bool {
	ps := l.Session.Places()
	if len(ps) == 0 {
		fmt.Fprintln(out, "ℹ️  No locations on map yet. Ask a question first!")

		return false
	}

	open := l.OpenMap
	if open == nil {
		open = export.OpenMap
	}

	path, err := open(orDefault(l.MapFile, export.DefaultMapFile), ps)
	if err != nil {
		fmt.Fprintf(out, "❌ Could not open map: %v\n", err)

		return false
	}

	fmt.Fprintf(out, "🗺️  Map generated and opened: %s\n", path)

	return false
}

func (l *Loop) exportKML(_ context.Context, out io.Writer) bool {
	path := orDefault(l.KMLFile, export.DefaultKMLFile)

	if err := export.WriteFile(path, l.Session.Places(), export.WriteKML); err != nil {
		if errors.Is(err, export.ErrNoPlaces) {
			fmt.Fprintln(out, "ℹ️  No locations to export. Ask about a place first!")
		} else {
			fmt.Fprintf(out, "❌ Could not export: %v\n", err)
		}

		return false
	}

	fmt.Fprintf(out, "📁 KML file created: %s\n", path)
	fmt.Fprintln(out, "👉 Open https://www.google.com/mymaps and import the file to see your markers.")

	return false
}

func (l *Loop) exportGeoJSON(_ context.Context, out io.Writer) bool {
	path := orDefault(l.GeoJSONFile, export.DefaultGeoJSONFile)

	if err := export.WriteFile(path, l.Session.Places(), export.WriteGeoJSON); err != nil {
		if errors.Is(err, export.ErrNoPlaces) {
			fmt.Fprintln(out, "ℹ️  No locations to export. Ask about a place first!")
		} else {
			fmt.Fprintf(out, "❌ Could not export: %v\n", err)
		}

		return false
	}

	fmt.Fprintf(out, "📁 GeoJSON file created: %s\n", path)

	return false
}

func (l *Loop) email(ctx context.Context, out io.Writer) bool {
	fmt.Fprintln(out, "📧 Sending conversation log...")

	if err := l.Session.Email(ctx); err != nil {
		fmt.Fprintf(out, "❌ %s\n", describe(err))

		return false
	}

	fmt.Fprintf(out, "✅ Email sent successfully to %s\n", l.Session.mailer.Recipient())

	return false
}

func (l *Loop) help(_ context.Context, out io.Writer) bool {
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  locations  list the located places")
	fmt.Fprintln(out, "  map        open the places on a map")
	fmt.Fprintf(out, "  export     write the places to %s\n", orDefault(l.KMLFile, export.DefaultKMLFile))
	fmt.Fprintf(out, "  geojson    write the places to %s\n", orDefault(l.GeoJSONFile, export.DefaultGeoJSONFile))
	fmt.Fprintln(out, "  email      email the conversation log")
	fmt.Fprintln(out, "  exit       quit")
	fmt.Fprintln(out, "Anything else is sent as a question.")

	return false
}

// describe turns errors into the user facing status line.
func describe(err error) string {
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		return "Add OPENAI_API_KEY to your .env file"
	case errors.Is(err, geocode.ErrMissingAPIKey):
		return "GOOGLE_MAPS_API_KEY missing in .env, places were not located"
	case errors.Is(err, email.ErrMissingCredentials):
		return "Add GMAIL_USER and GMAIL_APP_PASSWORD to your .env file"
	case errors.Is(err, email.ErrEmptyTranscript):
		return "Nothing to send yet. Ask a question first!"
	case errors.Is(err, email.ErrAuthentication):
		return "Gmail authentication failed! Use an App Password from https://myaccount.google.com/apppasswords"
	case errors.Is(err, context.Canceled):
		return "Canceled"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}

	return s
}
