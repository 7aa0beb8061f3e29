/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracker

import "context"

// Story is the subset of Shortcut story fields this action reads or writes.
type Story struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	ProjectID       int      `json:"project_id"`
	WorkflowID      int      `json:"workflow_id"`
	WorkflowStateID int      `json:"workflow_state_id"`
	Branches        []Branch `json:"branches"`
}

// Branch is a VCS branch the tracker has associated with a story.
type Branch struct {
	Name         string        `json:"name"`
	PullRequests []PullRequest `json:"pull_requests"`
}

// PullRequest is the tracker's record of a pull request on a story branch.
// The URL is the canonical identity; owner and repository are parsed out of
// it by the stats aggregator.
type PullRequest struct {
	Number int    `json:"number"`
	URL    string `json:"url"`
	Closed bool   `json:"closed"`
	Merged bool   `json:"merged"`
}

// Workflow is a named pipeline of states stories progress through.
// State names are unique within a workflow.
type Workflow struct {
	ID         int             `json:"id"`
	Name       string          `json:"name"`
	ProjectIDs []int           `json:"project_ids"`
	States     []WorkflowState `json:"states"`
}

// WorkflowState is one stage of a workflow.
type WorkflowState struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// StoryUpdate is the mutable portion of a story write. Description and state
// are always written together in a single call.
type StoryUpdate struct {
	Description     string `json:"description"`
	WorkflowStateID int    `json:"workflow_state_id"`
}

// Client is the tracker capability injected into the core components. It is
// implemented by HTTPClient and by test fakes.
type Client interface {
	GetStory(ctx context.Context, id int) (*Story, error)
	GetWorkflow(ctx context.Context, id int) (*Workflow, error)
	ListWorkflows(ctx context.Context) ([]Workflow, error)
	UpdateStory(ctx context.Context, id int, update StoryUpdate) (*Story, error)
}
