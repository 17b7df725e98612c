// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package llm asks a chat completion model for place recommendations.
package llm

import (
	"context"
	"strings"
	"text/template"
)

// Request is one recommendation question.
type Request struct {
	// Context is the conversation so far, "\nUser: ...\nBot: ..." pairs
	Context string

	Question string

	// Limit is the maximum number of places to recommend
	Limit int
}

// Recommender answers place questions with free text following the record
// format described in the prompt.
type Recommender interface {
	Recommend(ctx context.Context, req Request) (string, error)
}

var placesPrompt = template.Must(template.New("places").Parse(`
You are an expert at recommending attractions, restaurants, hotels, beaches, museums, landmarks worldwide, and etc.

Conversation history: {{.Context}}
User question: {{.Question}}

INSTRUCTIONS:
- If the question is about a location, respond with up to {{.Limit}} of the most relevant and popular places.
- Each item must include:
  1. The **exact Google Maps name** of the place (as it appears on maps.google.com)
  2. Category (e.g., Temple, Museum, Beach, Restaurant)
  3. A brief 1–2 sentence description
  4. The **full, searchable address** (street number, area, city, country)
  5. Do **not** include latitude/longitude coordinates in your response.

Formatting (strict):
  1. [NAME] - [CATEGORY]
     Description: [text]
     Address/Area: [Full address]

Extra guidance:
- Use Google Maps naming conventions and include any special identifiers (e.g. "Wat Saket (The Golden Mount)").
- Always include country and postal code when known.
- Do not use generic areas (like "Phra Nakhon"), use exact street-level addresses.
- Prefer **landmarks or businesses that have a verified Google Maps listing**.
- If uncertain, specify both the local name and English name.

Answer:
`))

// Prompt renders the places prompt for req.
func Prompt(req Request) (string, error) {
	var sb strings.Builder
	if err := placesPrompt.Execute(&sb, req); err != nil {
		return "", err
	}

	return sb.String(), nil
}
