// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/jcodagnone/placesbot/geocode"
	"github.com/jcodagnone/placesbot/utils/textutils"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// ErrUnresolvable is reported for candidates no strategy could locate.
var ErrUnresolvable = errors.New("no coordinates found")

// Unresolved is a candidate that could not be located.
type Unresolved struct {
	Candidate Candidate
	Err       error
}

// Report summarizes a Resolve call.
type Report struct {
	Added      []Place
	Duplicates []Candidate
	Unresolved []Unresolved
}

// OK reports whether at least one candidate ended up in the set.
func (r *Report) OK() bool {
	return len(r.Added) > 0 || len(r.Duplicates) > 0
}

// Resolver locates candidates with an ordered chain of strategies and adds
// them to a Set.
type Resolver struct {
	strategies []Strategy
	configErr  error

	// Hints are appended to every query, defaults to DefaultHints
	Hints []string

	// Workers bounds concurrent lookups, values below 2 resolve sequentially
	Workers int

	// Progress shows a progress bar on stderr when it is a terminal
	Progress bool

	// Out receives one status line per candidate, nil discards them
	Out io.Writer
}

// NewResolver creates a resolver trying strategies in order.
func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies, Hints: DefaultHints}
}

// Unavailable returns a resolver that fails every call with err. It is used
// when the geocoding credentials are missing so the configuration error is
// reported before any lookup.
func Unavailable(err error) *Resolver {
	return &Resolver{configErr: err}
}

// Locate runs the strategy chain for a query. The first precise fix wins;
// an imprecise fix is kept and returned only when no later strategy
// produces a fix.
func (r *Resolver) Locate(ctx context.Context, query string) (*Fix, error) {
	if r.configErr != nil {
		return nil, r.configErr
	}

	var (
		provisional *Fix
		errs        []error
	)

	for _, s := range r.strategies {
		fix, err := s.Locate(ctx, query)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))

			if ctx.Err() != nil {
				break
			}

			continue
		}

		if fix.Precise {
			return fix, nil
		}

		if provisional == nil {
			log.Printf("⚠️  Low precision (%s) for %q via %s, trying next strategy...", fix.Precision, query, s.Name())

			provisional = fix
		}
	}

	if provisional != nil {
		return provisional, nil
	}

	return nil, errors.Join(append([]error{ErrUnresolvable}, errs...)...)
}

type outcome struct {
	fix *Fix
	err error
}

// Resolve locates every candidate not already in set and adds the results in
// candidate order. Per-candidate failures are recorded in the report; the
// returned error is reserved for configuration problems.
func (r *Resolver) Resolve(ctx context.Context, set *Set, candidates []Candidate) (*Report, error) {
	if r.configErr != nil {
		return nil, r.configErr
	}

	if len(r.strategies) == 0 {
		return nil, errors.New("no geocoding strategy configured")
	}

	report := &Report{}
	pending := make([]int, 0, len(candidates))
	batch := make(map[string]bool, len(candidates))

	for i, c := range candidates {
		if set.Has(c.Name) || batch[c.Name] {
			continue
		}

		batch[c.Name] = true

		pending = append(pending, i)
	}

	outcomes := r.locateAll(ctx, candidates, pending)

	for i, c := range candidates {
		o, ok := outcomes[i]
		if !ok {
			report.Duplicates = append(report.Duplicates, c)
			r.printf("ℹ️  Already on the map: %s\n", textutils.Truncate(c.Name, maxStatusName))

			continue
		}

		if o.err == nil {
			o.err = r.add(set, c, o.fix, report)
		}

		if o.err != nil {
			report.Unresolved = append(report.Unresolved, Unresolved{Candidate: c, Err: o.err})
			log.Printf("Resolving %q: %v", c.Name, o.err)
			r.printf("⚠️  Skipped %s (%s)\n", textutils.Truncate(c.Name, maxStatusName), skipReason(o.err))
		}
	}

	return report, nil
}

func (r *Resolver) add(set *Set, c Candidate, fix *Fix, report *Report) error {
	p, err := NewPlace(c.Name, c.Address, fix.Point)
	if err != nil {
		return err
	}

	p.Method = fix.Method
	p.Precision = fix.Precision

	if err := set.Add(p); err != nil {
		return err
	}

	report.Added = append(report.Added, p)
	r.printf("✅ Added: %s → (%.5f, %.5f)\n", textutils.Truncate(p.Name, maxStatusName), p.Point.Lat, p.Point.Lng)

	return nil
}

// maxStatusName bounds the place names echoed in status lines.
const maxStatusName = 60

func skipReason(err error) string {
	switch {
	case geocode.IsQuotaExceededError(err):
		return "Maps key denied or over quota"
	case geocode.IsRateLimitError(err):
		return "rate limited by Google Maps"
	default:
		return "no coords found"
	}
}

// locateAll runs the lookups of the pending candidates, bounded by Workers.
func (r *Resolver) locateAll(ctx context.Context, candidates []Candidate, pending []int) map[int]outcome {
	ret := make(map[int]outcome, len(pending))

	var bar *progressbar.ProgressBar
	if r.Progress && len(pending) > 1 && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(pending),
			progressbar.OptionSetDescription("Geocoding"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	tick := func() {
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if r.Workers < 2 {
		for _, i := range pending {
			fix, err := r.Locate(ctx, BuildQuery(candidates[i], r.Hints))
			ret[i] = outcome{fix: fix, err: err}

			tick()
		}

		return ret
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	semaphore := make(chan struct{}, r.Workers)

	for _, i := range pending {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()
			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			fix, err := r.Locate(ctx, BuildQuery(candidates[i], r.Hints))

			mu.Lock()
			ret[i] = outcome{fix: fix, err: err}
			tick()
			mu.Unlock()
		}(i)
	}

	wg.Wait()

	return ret
}

func (r *Resolver) printf(format string, args ...any) {
	if r.Out != nil {
		fmt.Fprintf(r.Out, format, args...)
	}
}
