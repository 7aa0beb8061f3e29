/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package transition encodes the workflow-transition rules driven by
// aggregated pull-request review status.
//
// Each predicate is a pure function over the full set of a story's open pull
// requests. The universal predicates are vacuously true on an empty set and
// the existential ones false, so a story whose PRs all just merged sails
// through AllOK.
package transition

import (
	"github.com/frontloop/storysync/githubstats"
	"github.com/frontloop/storysync/review"
)

// A Predicate is one transition rule evaluated over every open pull request
// attached to a story.
type Predicate func(prs []githubstats.PRStatus) bool

// AllOK holds when every PR has both QA and engineer approval.
func AllOK(prs []githubstats.PRStatus) bool {
	for _, pr := range prs {
		if pr.QAStatus != review.StatusOK || pr.EngineerStatus != review.StatusOK {
			return false
		}
	}
	return true
}

// AllQAOK holds when every PR has QA approval.
func AllQAOK(prs []githubstats.PRStatus) bool {
	for _, pr := range prs {
		if pr.QAStatus != review.StatusOK {
			return false
		}
	}
	return true
}

// AllEngOK holds when every PR has engineer approval.
func AllEngOK(prs []githubstats.PRStatus) bool {
	for _, pr := range prs {
		if pr.EngineerStatus != review.StatusOK {
			return false
		}
	}
	return true
}

// AnyQAFail holds when some PR has a current QA rejection.
func AnyQAFail(prs []githubstats.PRStatus) bool {
	for _, pr := range prs {
		if pr.QAStatus == review.StatusFail {
			return true
		}
	}
	return false
}

// AnyQAChangeNotWIP holds when some PR has a QA rejection on record (even a
// stale one) and its latest commit is not a work-in-progress checkpoint,
// i.e. the author pushed something QA should look at again.
func AnyQAChangeNotWIP(prs []githubstats.PRStatus) bool {
	for _, pr := range prs {
		if pr.QAStatusLatest == review.StatusFail && !pr.IsLatestCommitWIP {
			return true
		}
	}
	return false
}
