// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package chat drives conversations: it asks the model, extracts and
// resolves the places in each answer, and serves the resulting set through
// a terminal loop or a local HTTP front-end.
package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jcodagnone/placesbot/email"
	"github.com/jcodagnone/placesbot/geocode"
	"github.com/jcodagnone/placesbot/llm"
	"github.com/jcodagnone/placesbot/places"
)

// Mailer sends the conversation transcript.
type Mailer interface {
	Check(ctx context.Context) error
	Send(ctx context.Context, transcript, sessionID string) error
	Recipient() string
}

// Options holds the collaborators of a Session.
type Options struct {
	Recommender llm.Recommender
	Extractor   places.Extractor

	// Resolver defaults to one failing with geocode.ErrMissingAPIKey
	Resolver *places.Resolver

	// Mailer is nil when email credentials are not configured
	Mailer Mailer
}

// Session is one conversation: its transcript and the places found so far.
type Session struct {
	ID string

	recommender llm.Recommender
	extractor   places.Extractor
	resolver    *places.Resolver
	mailer      Mailer

	set        *places.Set
	transcript strings.Builder
}

// Turn is the outcome of one question.
type Turn struct {
	Question   string
	Limit      int
	Answer     string
	Candidates []places.Candidate

	// Report is nil when no candidate was extracted
	Report *places.Report
}

// NewSession creates an empty session.
func NewSession(opts Options) *Session {
	extractor := opts.Extractor
	if extractor == nil {
		extractor = places.RegexExtractor{}
	}

	resolver := opts.Resolver
	if resolver == nil {
		resolver = places.Unavailable(geocode.ErrMissingAPIKey)
	}

	return &Session{
		ID:          uuid.NewString(),
		recommender: opts.Recommender,
		extractor:   extractor,
		resolver:    resolver,
		mailer:      opts.Mailer,
		set:         places.NewSet(),
	}
}

// Places returns the located places in insertion order.
func (s *Session) Places() []places.Place {
	return s.set.Places()
}

// Transcript returns the conversation so far.
func (s *Session) Transcript() string {
	return s.transcript.String()
}

// Ask sends a question to the model and resolves the places in its answer.
// When the model answered, the returned Turn is non-nil even if resolving
// failed with a configuration error.
func (s *Session) Ask(ctx context.Context, question string) (*Turn, error) {
	question = strings.TrimSpace(question)
	turn := &Turn{Question: question, Limit: ExtractLimit(question)}

	answer, err := s.recommender.Recommend(ctx, llm.Request{
		Context:  s.transcript.String(),
		Question: question,
		Limit:    turn.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("asking model: %w", err)
	}

	turn.Answer = answer
	fmt.Fprintf(&s.transcript, "\nUser: %s\nBot: %s", question, answer)

	turn.Candidates = s.extractor.Extract(answer)
	if len(turn.Candidates) == 0 {
		log.Printf("[%s] no candidates in answer to %q", s.ID, question)

		return turn, nil
	}

	report, err := s.resolver.Resolve(ctx, s.set, turn.Candidates)
	if err != nil {
		return turn, fmt.Errorf("resolving places: %w", err)
	}

	turn.Report = report

	log.Printf("[%s] %d candidates: %d added, %d already present, %d unresolved",
		s.ID, len(turn.Candidates), len(report.Added), len(report.Duplicates), len(report.Unresolved))

	return turn, nil
}

// Email checks the relay and sends the transcript.
func (s *Session) Email(ctx context.Context) error {
	if s.mailer == nil {
		return email.ErrMissingCredentials
	}

	transcript := s.Transcript()
	if strings.TrimSpace(transcript) == "" {
		return email.ErrEmptyTranscript
	}

	if err := s.mailer.Check(ctx); err != nil {
		return err
	}

	return s.mailer.Send(ctx, transcript, s.ID)
}
