/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package stories applies workflow transitions to tracker stories: resolving
// a state name to its ID, optionally appending release info to the
// description, and performing the verified write.
package stories

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/frontloop/storysync/tracker"
)

// ErrStateNotFound means a workflow has no state with the requested name.
// Matching is exact; there is no fuzzy fallback.
var ErrStateNotFound = errors.New("workflow state not found")

// TransitionFailedError reports a story write that returned success but did
// not land in the requested workflow state.
type TransitionFailedError struct {
	StoryID int
}

func (e *TransitionFailedError) Error() string {
	return fmt.Sprintf("transition failed for story %d", e.StoryID)
}

// EndStateID returns the ID of the state named endStateName in the workflow
// that owns the story's project. This is the release path, where workflows
// are listed once and shared across every referenced story.
func EndStateID(story *tracker.Story, workflows []tracker.Workflow, endStateName string) (int, error) {
	for _, wf := range workflows {
		if !slices.Contains(wf.ProjectIDs, story.ProjectID) {
			continue
		}
		for _, state := range wf.States {
			if state.Name == endStateName {
				return state.ID, nil
			}
		}
		return 0, fmt.Errorf("%w: no state %q in workflow %q", ErrStateNotFound, endStateName, wf.Name)
	}
	return 0, fmt.Errorf("%w: no workflow covers project %d", ErrStateNotFound, story.ProjectID)
}

const releaseInfoMarker = "Release Info"

// WithReleaseInfo returns a copy of the story with a release link section
// appended to its description. A story already carrying a "Release Info"
// section is returned unchanged, so repeated releases do not stack sections.
func WithReleaseInfo(story *tracker.Story, releaseURL string) *tracker.Story {
	if strings.Contains(story.Description, releaseInfoMarker) {
		return story
	}
	updated := *story
	updated.Description = story.Description + "\n\n### Release Info\n" + releaseURL + "\n"
	return &updated
}

// Updater performs verified story transitions via the tracker API.
type Updater struct {
	tracker tracker.Client
}

// NewUpdater wires the tracker capability.
func NewUpdater(tc tracker.Client) *Updater {
	return &Updater{tracker: tc}
}

// ResolveEndState resolves stateName within the story's own workflow. This
// is the pull-request path, where each story's workflow is fetched on
// demand.
func (u *Updater) ResolveEndState(ctx context.Context, story *tracker.Story, stateName string) (int, error) {
	wf, err := u.tracker.GetWorkflow(ctx, story.WorkflowID)
	if err != nil {
		return 0, err
	}
	for _, state := range wf.States {
		if state.Name == stateName {
			return state.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: no state %q in workflow %q", ErrStateNotFound, stateName, wf.Name)
}

// Transition writes the story's description and target state in one call and
// verifies the write landed. The tracker can return 200 without applying the
// state change, so the state ID echoed in the response is the source of
// truth. Returns the updated story's name.
func (u *Updater) Transition(ctx context.Context, story *tracker.Story, endStateID int) (string, error) {
	updated, err := u.tracker.UpdateStory(ctx, story.ID, tracker.StoryUpdate{
		Description:     story.Description,
		WorkflowStateID: endStateID,
	})
	if err != nil {
		return "", err
	}
	if updated.WorkflowStateID != endStateID {
		return "", &TransitionFailedError{StoryID: story.ID}
	}
	return updated.Name, nil
}
