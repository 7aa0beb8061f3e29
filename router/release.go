/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package router

import (
	"context"
	"fmt"
	"strconv"

	"github.com/chainguard-dev/clog"
	"github.com/frontloop/storysync/stories"
	"github.com/frontloop/storysync/storyref"
	"github.com/frontloop/storysync/tracker"
	"github.com/google/go-github/v84/github"
	"golang.org/x/sync/errgroup"
)

// handleRelease moves every story referenced by the release notes to the
// configured end state, optionally stamping the release URL into the story
// description. Each reference token is resolved on its own, so "sc0002" and
// "sc2" in one body both produce an update. Unknown story references are
// logged and dropped rather than failing the whole release.
func (r *Router) handleRelease(ctx context.Context, e *github.ReleaseEvent) ([]Update, error) {
	log := clog.FromContext(ctx)
	release := e.GetRelease()

	tokens := storyref.Find(release.GetBody())
	if len(tokens) == 0 {
		log.Warn("No stories were found in the release")
		return []Update{}, nil
	}

	found, err := r.storyDetails(ctx, tokens)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return []Update{}, nil
	}

	workflows, err := r.tracker.ListWorkflows(ctx)
	if err != nil {
		return nil, err
	}

	updates := []Update{}
	for _, story := range found {
		if r.cfg.AddReleaseInfo {
			story = stories.WithReleaseInfo(story, release.GetHTMLURL())
		}
		stateID, err := stories.EndStateID(story, workflows, r.cfg.EndStateName)
		if err != nil {
			return nil, err
		}
		name, err := r.updater.Transition(ctx, story, stateID)
		if err != nil {
			return nil, err
		}
		updates = append(updates, Update{StoryID: story.ID, Name: name, State: r.cfg.EndStateName})
	}
	return updates, nil
}

// storyDetails fetches the referenced stories concurrently, preserving the
// token order and dropping stories the tracker doesn't know about.
func (r *Router) storyDetails(ctx context.Context, tokens []string) ([]*tracker.Story, error) {
	found := make([]*tracker.Story, len(tokens))
	g, gctx := errgroup.WithContext(ctx)
	for i, token := range tokens {
		g.Go(func() error {
			id, err := strconv.Atoi(token)
			if err != nil {
				return fmt.Errorf("story reference %q: %w", token, err)
			}
			story, err := r.tracker.GetStory(gctx, id)
			if err != nil {
				if tracker.IsNotFound(err) {
					clog.FromContext(gctx).Warnf("Could not locate story: %s", token)
					return nil
				}
				return err
			}
			found[i] = story
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := found[:0]
	for _, story := range found {
		if story != nil {
			out = append(out, story)
		}
	}
	return out, nil
}
