/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package review classifies pull-request code reviews.
//
// A review is graded against the latest commit on its pull request: a review
// published before that commit was committed reviewed stale code and counts
// for nothing. Only an APPROVED review in good standing counts as OK.
package review

import (
	"strings"
	"time"
)

// Status is the grade assigned to a reviewer's latest review.
type Status string

const (
	// StatusOK is a current APPROVED review.
	StatusOK Status = "OK"
	// StatusFail is a current review in any non-approved state.
	StatusFail Status = "FAIL"
	// StatusNA means there is no review to grade, or it is stale.
	StatusNA Status = "NA"
)

const stateApproved = "APPROVED"

// Commit is the latest commit on a pull request at classification time.
type Commit struct {
	Message       string
	CommittedDate time.Time
}

// Review is a single code review on a pull request.
type Review struct {
	State           string
	PublishedAt     time.Time
	Author          string
	MinimizedReason string
}

// Classify grades a review against the latest commit on its pull request.
//
// A missing review is NA. Unless ignoreStaleness is set, a review published
// before the latest commit was committed is stale and also NA. Otherwise an
// APPROVED review is OK and any other state is FAIL.
func Classify(r *Review, latest Commit, ignoreStaleness bool) Status {
	if r == nil {
		return StatusNA
	}
	if !ignoreStaleness && !latest.CommittedDate.IsZero() && r.PublishedAt.Before(latest.CommittedDate) {
		return StatusNA
	}
	if r.State == stateApproved {
		return StatusOK
	}
	return StatusFail
}

// IsWIP reports whether the latest commit on the reviewed pull request is a
// work-in-progress checkpoint, by case-insensitive substring match of the
// configured bypass terms against the commit message. A nil review means
// nothing was reviewed, which is never WIP.
func IsWIP(r *Review, latest Commit, terms []string) bool {
	if r == nil || latest.Message == "" {
		return false
	}
	message := strings.ToLower(latest.Message)
	for _, term := range terms {
		if strings.Contains(message, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
