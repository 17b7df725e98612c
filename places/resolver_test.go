// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jcodagnone/placesbot/geocode"
	"github.com/jcodagnone/placesbot/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStrategy answers from a table keyed by the candidate name, which is
// the first component of every query.
type fakeStrategy struct {
	name    string
	answers map[string]*Fix

	mu    sync.Mutex
	calls []string
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Locate(_ context.Context, query string) (*Fix, error) {
	key, _, _ := strings.Cut(query, ",")

	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()

	if fix, ok := f.answers[key]; ok {
		ret := *fix
		ret.Method = f.name

		return &ret, nil
	}

	return nil, &geocode.Error{Type: geocode.ErrorTypeNotFound, Message: "ZERO_RESULTS"}
}

func (f *fakeStrategy) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.calls)
}

var (
	coarse  = &Fix{Point: spatial.Point{Lat: 13.7, Lng: 100.5}, Precision: "APPROXIMATE"}
	rooftop = &Fix{Point: spatial.Point{Lat: 13.7437, Lng: 100.4888}, Precise: true, Precision: "ROOFTOP"}
	refined = &Fix{Point: spatial.Point{Lat: 13.74362, Lng: 100.48880}, Precise: true, Precision: "PLACE_DETAILS"}
)

func TestResolverSkipsPresentPlaces(t *testing.T) {
	tier1 := &fakeStrategy{name: "geocode", answers: map[string]*Fix{"Wat Arun": rooftop}}
	r := NewResolver(tier1)

	set := NewSet()
	require.NoError(t, set.Add(Place{Name: "Wat Arun", Point: rooftop.Point}))

	report, err := r.Resolve(context.Background(), set, []Candidate{{Name: "Wat Arun", Address: "Bangkok"}})
	require.NoError(t, err)

	assert.Equal(t, 0, tier1.callCount())
	assert.Equal(t, 1, set.Len())
	assert.Equal(t, []Candidate{{Name: "Wat Arun", Address: "Bangkok"}}, report.Duplicates)
	assert.True(t, report.OK())
}

func TestResolverTiers(t *testing.T) {
	tests := []struct {
		name       string
		tier1      map[string]*Fix
		tier2      map[string]*Fix
		wantPoint  spatial.Point
		wantMethod string
		wantTier2  int
	}{
		{
			name:       "precise tier 1",
			tier1:      map[string]*Fix{"Wat Arun": rooftop},
			wantPoint:  rooftop.Point,
			wantMethod: "geocode",
			wantTier2:  0,
		},
		{
			name:       "coarse tier 1 refined by tier 2",
			tier1:      map[string]*Fix{"Wat Arun": coarse},
			tier2:      map[string]*Fix{"Wat Arun": refined},
			wantPoint:  refined.Point,
			wantMethod: "place_details",
			wantTier2:  1,
		},
		{
			name:       "coarse tier 1 kept when tier 2 fails",
			tier1:      map[string]*Fix{"Wat Arun": coarse},
			wantPoint:  coarse.Point,
			wantMethod: "geocode",
			wantTier2:  1,
		},
		{
			name:       "tier 1 fails",
			tier2:      map[string]*Fix{"Wat Arun": refined},
			wantPoint:  refined.Point,
			wantMethod: "place_details",
			wantTier2:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier1 := &fakeStrategy{name: "geocode", answers: tt.tier1}
			tier2 := &fakeStrategy{name: "place_details", answers: tt.tier2}

			set := NewSet()
			report, err := NewResolver(tier1, tier2).Resolve(context.Background(), set,
				[]Candidate{{Name: "Wat Arun", Address: "Bangkok"}})
			require.NoError(t, err)
			require.Len(t, report.Added, 1)

			got := set.Places()[0]
			assert.Equal(t, tt.wantPoint, got.Point)
			assert.Equal(t, tt.wantMethod, got.Method)
			assert.Equal(t, tt.wantTier2, tier2.callCount())
			assert.True(t, report.OK())
		})
	}
}

func TestResolverUnresolvableContinues(t *testing.T) {
	tier1 := &fakeStrategy{name: "geocode", answers: map[string]*Fix{"Grand Palace": rooftop}}
	tier2 := &fakeStrategy{name: "place_details"}

	var out bytes.Buffer

	r := NewResolver(tier1, tier2)
	r.Out = &out

	set := NewSet()
	report, err := r.Resolve(context.Background(), set, []Candidate{
		{Name: "Atlantis"},
		{Name: "Grand Palace"},
	})
	require.NoError(t, err)

	require.Len(t, report.Unresolved, 1)
	assert.Equal(t, "Atlantis", report.Unresolved[0].Candidate.Name)
	require.ErrorIs(t, report.Unresolved[0].Err, ErrUnresolvable)
	assert.True(t, geocode.IsNotFoundError(report.Unresolved[0].Err))

	assert.Equal(t, 1, set.Len())
	assert.True(t, report.OK())
	assert.Contains(t, out.String(), "⚠️  Skipped Atlantis (no coords found)")
	assert.Contains(t, out.String(), "✅ Added: Grand Palace")
}

// failingStrategy fails every lookup with the same error.
type failingStrategy struct{ err error }

func (failingStrategy) Name() string { return "failing" }

func (f failingStrategy) Locate(context.Context, string) (*Fix, error) { return nil, f.err }

func TestResolverSkipReasons(t *testing.T) {
	longName := strings.Repeat("Wat ", 30)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "denied key",
			err:  &geocode.Error{Type: geocode.ErrorTypeQuotaExceeded, Message: "REQUEST_DENIED"},
			want: "(Maps key denied or over quota)",
		},
		{
			name: "rate limited",
			err:  &geocode.Error{Type: geocode.ErrorTypeRateLimit, Message: "HTTP 429"},
			want: "(rate limited by Google Maps)",
		},
		{
			name: "not found",
			err:  &geocode.Error{Type: geocode.ErrorTypeNotFound, Message: "ZERO_RESULTS"},
			want: "(no coords found)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer

			r := NewResolver(failingStrategy{err: tt.err})
			r.Out = &out

			report, err := r.Resolve(context.Background(), NewSet(), []Candidate{{Name: "Atlantis"}, {Name: longName}})
			require.NoError(t, err)
			require.Len(t, report.Unresolved, 2)

			assert.Contains(t, out.String(), "⚠️  Skipped Atlantis "+tt.want)
			assert.Contains(t, out.String(), "⚠️  Skipped "+strings.Repeat("Wat ", 14)+"Wat…"+" "+tt.want)
			assert.NotContains(t, out.String(), longName)
		})
	}
}

func TestResolverNothingResolved(t *testing.T) {
	r := NewResolver(&fakeStrategy{name: "geocode"})

	report, err := r.Resolve(context.Background(), NewSet(), []Candidate{{Name: "Atlantis"}})
	require.NoError(t, err)
	assert.False(t, report.OK())

	report, err = r.Resolve(context.Background(), NewSet(), nil)
	require.NoError(t, err)
	assert.False(t, report.OK())
}

func TestResolverConfigError(t *testing.T) {
	_, err := Unavailable(geocode.ErrMissingAPIKey).Resolve(context.Background(), NewSet(), []Candidate{{Name: "Wat Arun"}})
	require.ErrorIs(t, err, geocode.ErrMissingAPIKey)

	_, err = NewResolver().Resolve(context.Background(), NewSet(), []Candidate{{Name: "Wat Arun"}})
	require.Error(t, err)
}

func TestResolverWorkersKeepOrder(t *testing.T) {
	answers := map[string]*Fix{}
	candidates := make([]Candidate, 0, 20)

	for i := range 20 {
		name := string(rune('A' + i))
		answers[name] = &Fix{Point: spatial.Point{Lat: float64(i), Lng: float64(i)}, Precise: true}
		candidates = append(candidates, Candidate{Name: name})
	}

	// repeated within the same batch
	candidates = append(candidates, Candidate{Name: "A"})

	tier1 := &fakeStrategy{name: "geocode", answers: answers}
	r := NewResolver(tier1)
	r.Workers = 4

	set := NewSet()
	report, err := r.Resolve(context.Background(), set, candidates)
	require.NoError(t, err)

	assert.Equal(t, 20, tier1.callCount())
	assert.Len(t, report.Added, 20)
	assert.Len(t, report.Duplicates, 1)

	for i, p := range set.Places() {
		assert.Equal(t, candidates[i].Name, p.Name)
	}
}

func TestResolverInvalidFix(t *testing.T) {
	bogus := &Fix{Point: spatial.Point{Lat: 120, Lng: 0}, Precise: true}
	r := NewResolver(&fakeStrategy{name: "geocode", answers: map[string]*Fix{"Wat Arun": bogus}})

	set := NewSet()
	report, err := r.Resolve(context.Background(), set, []Candidate{{Name: "Wat Arun"}})
	require.NoError(t, err)

	assert.Equal(t, 0, set.Len())
	assert.Len(t, report.Unresolved, 1)
}

func TestResolverCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tier1 := &cancelStrategy{}
	tier2 := &fakeStrategy{name: "place_details", answers: map[string]*Fix{"Wat Arun": refined}}

	report, err := NewResolver(tier1, tier2).Resolve(ctx, NewSet(), []Candidate{{Name: "Wat Arun"}})
	require.NoError(t, err)

	require.Len(t, report.Unresolved, 1)
	assert.True(t, errors.Is(report.Unresolved[0].Err, context.Canceled))
	assert.Equal(t, 0, tier2.callCount())
}

type cancelStrategy struct{}

func (cancelStrategy) Name() string { return "geocode" }

func (cancelStrategy) Locate(ctx context.Context, _ string) (*Fix, error) {
	return nil, ctx.Err()
}

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name  string
		c     Candidate
		hints []string
		want  string
	}{
		{"default hints", Candidate{Name: "Wat Arun", Address: "Bangkok"}, DefaultHints,
			"Wat Arun, Bangkok, tourist attraction, famous place, verified Google Maps location"},
		{"no address", Candidate{Name: "Wat Arun"}, nil, "Wat Arun"},
		{"blank hints", Candidate{Name: "Wat Arun", Address: " "}, []string{"", "temple"}, "Wat Arun, temple"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildQuery(tt.c, tt.hints))
		})
	}
}
