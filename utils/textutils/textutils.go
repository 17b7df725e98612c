// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils holds small text normalization helpers.
package textutils

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold trims s and applies Unicode case folding, so two strings differing
// only in case fold to the same value. Accents are kept.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Truncate shortens s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:max(n-1, 0)]) + "…"
}
