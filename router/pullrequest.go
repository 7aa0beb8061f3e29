/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package router

import (
	"context"

	"github.com/chainguard-dev/clog"
	"github.com/frontloop/storysync/githubstats"
	"github.com/frontloop/storysync/storyref"
	"github.com/frontloop/storysync/tracker"
	"github.com/frontloop/storysync/transition"
	"github.com/google/go-github/v84/github"
)

// handlePullRequest covers PR lifecycle actions. Opening or reopening a PR
// queues the story for feature QA; a new push returns it to QA only when QA
// had rejected the previous commit and the push isn't a WIP checkpoint.
func (r *Router) handlePullRequest(ctx context.Context, e *github.PullRequestEvent) ([]Update, error) {
	var rules []transition.Rule
	switch action := e.GetAction(); action {
	case "opened", "reopened":
		rules = []transition.Rule{{
			Predicate:   func([]githubstats.PRStatus) bool { return true },
			TargetState: r.cfg.States.ReadyToFeatureQA,
		}}
	case "synchronize":
		rules = []transition.Rule{{
			Predicate:   transition.AnyQAChangeNotWIP,
			TargetState: r.cfg.States.ReadyForFeatureQA,
		}}
	default:
		return nil, &InvalidEventError{Event: "pull_request", Action: action}
	}
	return r.transitionPRStories(ctx, e.GetPullRequest(), rules)
}

// handleReview grades every open PR on the story whenever review standing
// may have changed, whatever the delivery's action: a dismissal moves the
// aggregate just as a submission does. The rules are ordered strongest
// first: full approval beats QA-only approval, and a QA rejection wins over
// neither.
func (r *Router) handleReview(ctx context.Context, e *github.PullRequestReviewEvent) ([]Update, error) {
	rules := []transition.Rule{
		{Predicate: transition.AllOK, TargetState: r.cfg.States.ReadyForStaging},
		{Predicate: transition.AllQAOK, TargetState: r.cfg.States.ReadyForCodeReview},
		{Predicate: transition.AnyQAFail, TargetState: r.cfg.States.TestFail},
	}
	return r.transitionPRStories(ctx, e.GetPullRequest(), rules)
}

// transitionPRStories collects story references from the PR and applies the
// rule chain to each referenced story.
func (r *Router) transitionPRStories(ctx context.Context, pr *github.PullRequest, rules []transition.Rule) ([]Update, error) {
	if pr == nil {
		return nil, ErrMissingPullRequest
	}
	ids := storyref.FindIDs(pr.GetTitle(), pr.GetBody(), pr.GetHead().GetRef())
	if len(ids) == 0 {
		clog.FromContext(ctx).Infof("No stories referenced by pull request #%d", pr.GetNumber())
		return []Update{}, nil
	}

	updates := []Update{}
	for _, id := range ids {
		update, err := r.transitionStory(ctx, id, rules)
		if err != nil {
			return nil, err
		}
		if update != nil {
			updates = append(updates, *update)
		}
	}
	return updates, nil
}

// transitionStory grades one story's open PRs and applies the first matching
// rule. Stories the tracker doesn't know are logged and dropped; a story
// whose branch topology doesn't fit the expected shape is left alone.
func (r *Router) transitionStory(ctx context.Context, storyID int, rules []transition.Rule) (*Update, error) {
	log := clog.FromContext(ctx).With("story", storyID)

	stats, err := r.stats.StoryStats(ctx, storyID)
	if err != nil {
		if tracker.IsNotFound(err) {
			log.Warnf("Could not locate story: %d", storyID)
			return nil, nil
		}
		return nil, err
	}

	// Every branch but one must carry an open PR. The odd one out is the
	// story's primary branch; any other shape means work is still in flight
	// and the story shouldn't move.
	if stats.TotalBranches != stats.BranchesWithOpenPRs+1 {
		log.Infof("Skipping story: %d branches, %d with open PRs", stats.TotalBranches, stats.BranchesWithOpenPRs)
		return nil, nil
	}

	target, ok := transition.Evaluate(rules, stats.AllOpenPRs)
	if !ok {
		log.Debug("no transition rule matched")
		return nil, nil
	}

	story := stats.Story
	stateID, err := r.updater.ResolveEndState(ctx, story, target)
	if err != nil {
		return nil, err
	}
	name, err := r.updater.Transition(ctx, story, stateID)
	if err != nil {
		return nil, err
	}

	log.Infof("Moved story to %s", target)
	return &Update{StoryID: storyID, Name: name, State: target}, nil
}
