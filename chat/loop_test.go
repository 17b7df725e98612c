// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jcodagnone/placesbot/email"
	"github.com/jcodagnone/placesbot/places"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runLoop(t *testing.T, l *Loop, input string) string {
	t.Helper()

	var out bytes.Buffer
	require.NoError(t, l.Run(context.Background(), strings.NewReader(input), &out))

	return out.String()
}

func TestLoopCommands(t *testing.T) {
	dir := t.TempDir()
	s, _ := newTestSession(t, &fakeRecommender{answer: twoTemples})

	var opened []places.Place

	l := &Loop{
		Session:     s,
		MapFile:     filepath.Join(dir, "map.html"),
		KMLFile:     filepath.Join(dir, "places.kml"),
		GeoJSONFile: filepath.Join(dir, "places.geojson"),
		OpenMap: func(path string, ps []places.Place) (string, error) {
			opened = ps

			return path, nil
		},
	}

	out := runLoop(t, l, "LOCATIONS\nmap\n\ntop 2 temples in Bangkok\nlocations\nMap\nexport\ngeojson\nEXIT\nnot reached\n")

	assert.Contains(t, out, "🌍 Welcome to Places AI ChatBot!")
	assert.Contains(t, out, "No locations added yet.")
	assert.Contains(t, out, "ℹ️  No locations on map yet. Ask a question first!")
	assert.Contains(t, out, "Please ask a question to continue.")
	assert.Contains(t, out, "🤖 Bot:\n"+twoTemples)
	assert.Contains(t, out, "💡 Tip: Type 'map' to view all locations")
	assert.Contains(t, out, "1. Wat Arun: (13.74370, 100.48880)")
	assert.Contains(t, out, "2. Wat Pho: (13.74650, 100.49270)")
	assert.Contains(t, out, "🗺️  Map generated and opened: "+l.MapFile)
	assert.Contains(t, out, "📁 KML file created: "+l.KMLFile)
	assert.Contains(t, out, "📁 GeoJSON file created: "+l.GeoJSONFile)
	assert.Contains(t, out, "Goodbye! 👋")
	assert.Len(t, opened, 2)

	kml, err := os.ReadFile(l.KMLFile)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(kml), "<Placemark>"))

	_, err = os.Stat(l.GeoJSONFile)
	require.NoError(t, err)
}

func TestLoopNoRecords(t *testing.T) {
	s, _ := newTestSession(t, &fakeRecommender{answer: "Sorry, I can't help with that."})

	out := runLoop(t, &Loop{Session: s}, "what is the weather?\nexport\n")

	assert.Contains(t, out, "ℹ️  Could not extract locations from response")
	assert.Contains(t, out, "ℹ️  No locations to export. Ask about a place first!")
}

func TestLoopErrorsKeepSessionAlive(t *testing.T) {
	rec := &fakeRecommender{err: errors.New("upstream down")}
	s, _ := newTestSession(t, rec)

	out := runLoop(t, &Loop{Session: s}, "top 3 temples\nemail\nhelp\nexit\n")

	assert.Contains(t, out, "❌ Error: asking model: upstream down")
	assert.Contains(t, out, "❌ Add GMAIL_USER and GMAIL_APP_PASSWORD to your .env file")
	assert.Contains(t, out, "Commands:")
	assert.Contains(t, out, "Goodbye!")
	assert.Len(t, rec.requests, 1)
}

func TestLoopMissingGeocoder(t *testing.T) {
	s := NewSession(Options{Recommender: &fakeRecommender{answer: twoTemples}})

	out := runLoop(t, &Loop{Session: s}, "temples\n")

	assert.Contains(t, out, "🤖 Bot:")
	assert.Contains(t, out, "❌ GOOGLE_MAPS_API_KEY missing in .env, places were not located")
}

func TestLoopEmail(t *testing.T) {
	mailer := &fakeMailer{}
	s := NewSession(Options{Recommender: &fakeRecommender{answer: "hi"}, Mailer: mailer})

	out := runLoop(t, &Loop{Session: s}, "email\nhello\nemail\n")
	assert.Contains(t, out, "❌ Nothing to send yet. Ask a question first!")
	assert.Contains(t, out, "✅ Email sent successfully to me@example.com")
	assert.Len(t, mailer.sent, 1)

	mailer.sendErr = email.ErrAuthentication
	out = runLoop(t, &Loop{Session: s}, "email\n")
	assert.Contains(t, out, "❌ Gmail authentication failed!")
}

func TestLoopCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, _ := newTestSession(t, &fakeRecommender{answer: twoTemples})

	var out bytes.Buffer

	err := (&Loop{Session: s}).Run(ctx, strings.NewReader("temples\n"), &out)
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoopInterruptWhileWaitingForInput(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, _ := newTestSession(t, &fakeRecommender{answer: twoTemples})

	// never written to, so every read blocks
	in, w := io.Pipe()
	defer w.Close()

	done := make(chan error, 1)

	go func() {
		done <- (&Loop{Session: s}).Run(ctx, in, io.Discard)
	}()

	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the context was canceled")
	}
}
