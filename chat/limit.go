// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package chat

import (
	"regexp"
	"strconv"
)

const (
	DefaultLimit = 10
	MaxLimit     = 25
)

var limitRegex = regexp.MustCompile(`\b(\d{1,2})\b`)

// ExtractLimit returns the first standalone one or two digit number in the
// question ("top 5 beaches" -> 5), capped at MaxLimit. Questions without a
// number, or asking for zero places, get DefaultLimit.
func ExtractLimit(question string) int {
	m := limitRegex.FindStringSubmatch(question)
	if m == nil {
		return DefaultLimit
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return DefaultLimit
	}

	return min(n, MaxLimit)
}
