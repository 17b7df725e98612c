// Copyright 2025 The placesbot Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"regexp"
	"strings"
)

// Extractor turns a model answer into candidate records. An answer without
// recognizable records yields an empty slice, never an error.
type Extractor interface {
	Extract(text string) []Candidate
}

// recordRegex matches blocks like
//
//	1. Wat Arun - Temple
//	   Description: ...
//	   Address/Area: 158 Thanon Wang Doem, Bangkok
//
// The name starts a line and is separated from the category by a dash with
// blanks on both sides, so "must-see" or "8-18" never open a record. The
// description part is lazy so each block stops at the first address label.
var recordRegex = regexp.MustCompile(
	`(?ms)^[ \t]*(\d+[.)][ \t]+)?([^\n]+?)[ \t]+[-\x{2013}\x{2014}][ \t]+[^\n]+\n.*?(?:Address/Area|Address)[^:\n]*:[ \t]*([^\n]+)`,
)

var numberingRegex = regexp.MustCompile(`^\d+[.)]\s*`)

// RegexExtractor extracts records following the "NAME - CATEGORY" ...
// "Address/Area: ..." convention the places prompt asks for.
type RegexExtractor struct{}

// Extract implements Extractor.
func (RegexExtractor) Extract(text string) []Candidate {
	matches := recordRegex.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))

	var ret []Candidate

	for _, m := range matches {
		name := cleanName(m[2])
		if name == "" || seen[name] {
			continue
		}

		seen[name] = true

		ret = append(ret, Candidate{
			Name:    name,
			Address: cleanAddress(m[3]),
		})
	}

	return ret
}

// cleanName removes surrounding whitespace, list numbering and markdown
// emphasis ("**1. Wat Arun**" -> "Wat Arun").
func cleanName(s string) string {
	for {
		prev := s
		s = strings.Trim(s, " \t\r*_#")
		s = numberingRegex.ReplaceAllString(s, "")

		if s == prev {
			return s
		}
	}
}

func cleanAddress(s string) string {
	return strings.Trim(s, " \t\r*_")
}
