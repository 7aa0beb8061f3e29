/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package transition

import "github.com/frontloop/storysync/githubstats"

// Rule pairs a predicate with the workflow state a story moves to when the
// predicate is the first in the chain to hold.
type Rule struct {
	Predicate   Predicate
	TargetState string
}

// Evaluate walks rules in order and returns the target state of the first
// rule whose predicate holds. Order carries meaning: AllOK implies AllQAOK,
// so callers list the stronger rule first and the first match wins. ok is
// false when no rule matched.
func Evaluate(rules []Rule, prs []githubstats.PRStatus) (target string, ok bool) {
	for _, rule := range rules {
		if rule.Predicate(prs) {
			return rule.TargetState, true
		}
	}
	return "", false
}
