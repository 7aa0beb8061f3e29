/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package storyref extracts Shortcut story references from free text.
//
// A reference is the story prefix ("sc", or the legacy "ch" from the
// Clubhouse days), optionally hyphenated, immediately followed by one to
// seven decimal digits. Matching is case-insensitive and the prefix may be
// embedded in a larger word, but the digits must directly follow the prefix:
// "[sc1234]", "user/ch42/branch" and "someSC88foo" all reference stories,
// while "sci789" and "sc-thing" do not.
package storyref

import (
	"regexp"
	"strconv"
)

var refPattern = regexp.MustCompile(`(?i)(?:sc|ch)-?(\d{1,7})`)

// Find returns the distinct story-ID tokens referenced in text, in
// first-occurrence order. Tokens keep their leading zeros ("sc0002" yields
// "0002"). Returns nil when text contains no references; callers treat nil
// as "nothing to do" rather than an error.
func Find(text string) []string {
	matches := refPattern.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var ids []string
	for _, m := range matches {
		id := m[1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// FindIDs scans one or more texts and returns the referenced story IDs as
// integers, de-duplicated across all inputs in first-occurrence order. This
// is the form the pull-request pipeline uses, where "sc0002" and "sc2" name
// the same story.
func FindIDs(texts ...string) []int {
	seen := make(map[int]struct{})
	var ids []int
	for _, text := range texts {
		for _, m := range refPattern.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			ids = append(ids, n)
		}
	}
	return ids
}
