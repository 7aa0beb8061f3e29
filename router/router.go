/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package router maps GitHub webhook events onto story transitions. Each
// supported event produces a list of story updates; everything else is
// rejected with an InvalidEventError so the workflow misconfiguration is
// visible in the run log.
package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/frontloop/storysync/config"
	"github.com/frontloop/storysync/githubstats"
	"github.com/frontloop/storysync/stories"
	"github.com/frontloop/storysync/tracker"
	"github.com/google/go-github/v84/github"
)

// ErrMissingPullRequest means the event payload carried no pull request.
var ErrMissingPullRequest = errors.New("event payload has no pull request")

// InvalidEventError reports an event or action this action is not wired to
// handle. Action is empty when the event type itself is unsupported.
type InvalidEventError struct {
	Event  string
	Action string
}

func (e *InvalidEventError) Error() string {
	if e.Action == "" {
		return fmt.Sprintf("unsupported event %q", e.Event)
	}
	return fmt.Sprintf("unsupported action %q for event %q", e.Action, e.Event)
}

// Update records one story transition that was applied.
type Update struct {
	StoryID int
	Name    string
	State   string
}

// Stats is the review-aggregation capability the router consumes.
type Stats interface {
	StoryStats(ctx context.Context, storyID int) (*githubstats.StoryStats, error)
}

// Router dispatches webhook payloads to the per-event handlers.
type Router struct {
	tracker tracker.Client
	stats   Stats
	updater *stories.Updater
	cfg     config.Config
}

// New builds a Router. The story updater shares the tracker client.
func New(tc tracker.Client, stats Stats, cfg config.Config) *Router {
	return &Router{
		tracker: tc,
		stats:   stats,
		updater: stories.NewUpdater(tc),
		cfg:     cfg,
	}
}

// Dispatch parses the raw event payload and routes it to the matching
// handler. It returns the transitions that were applied, which may be empty
// when every referenced story was skipped.
func (r *Router) Dispatch(ctx context.Context, event string, payload []byte) ([]Update, error) {
	hook, err := github.ParseWebHook(event, payload)
	if err != nil {
		return nil, fmt.Errorf("parsing %s payload: %w", event, err)
	}

	switch e := hook.(type) {
	case *github.ReleaseEvent:
		return r.handleRelease(ctx, e)
	case *github.PullRequestEvent:
		return r.handlePullRequest(ctx, e)
	case *github.PullRequestReviewEvent:
		return r.handleReview(ctx, e)
	default:
		return nil, &InvalidEventError{Event: event}
	}
}
