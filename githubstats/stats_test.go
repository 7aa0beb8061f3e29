/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubstats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/frontloop/storysync/review"
	"github.com/frontloop/storysync/tracker"
	"github.com/google/go-cmp/cmp"
)

// --- Fakes ---

type fakeTracker struct {
	stories map[int]*tracker.Story
}

func (f *fakeTracker) GetStory(_ context.Context, id int) (*tracker.Story, error) {
	story, ok := f.stories[id]
	if !ok {
		return nil, &tracker.StatusError{StatusCode: 404, Method: "GET", Path: fmt.Sprintf("/stories/%d", id)}
	}
	return story, nil
}

func (f *fakeTracker) GetWorkflow(context.Context, int) (*tracker.Workflow, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeTracker) ListWorkflows(context.Context) ([]tracker.Workflow, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeTracker) UpdateStory(context.Context, int, tracker.StoryUpdate) (*tracker.Story, error) {
	return nil, fmt.Errorf("not implemented")
}

type fakeReviews struct {
	byNumber map[int]*PRReviews
	errs     map[int]error
	delays   map[int]time.Duration
}

func (f *fakeReviews) PullRequestReviews(_ context.Context, ref Ref) (*PRReviews, error) {
	if d, ok := f.delays[ref.Number]; ok {
		time.Sleep(d)
	}
	if err, ok := f.errs[ref.Number]; ok {
		return nil, err
	}
	data, ok := f.byNumber[ref.Number]
	if !ok {
		return nil, fmt.Errorf("couldn't get reviews for pull request %d", ref.Number)
	}
	return data, nil
}

var (
	commitTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	qaLogins   = []string{"qa-alice", "qa-bob"}
	wipTerms   = []string{"wip", "do not review"}
)

func openPR(n int) tracker.PullRequest {
	return tracker.PullRequest{
		Number: n,
		URL:    fmt.Sprintf("https://github.com/acme/widgets/pull/%d", n),
	}
}

func storyWithBranches(branches ...tracker.Branch) *tracker.Story {
	return &tracker.Story{ID: 42, Name: "cool feature", Branches: branches}
}

func TestStoryStatsCounts(t *testing.T) {
	closed := openPR(9)
	closed.Closed = true
	merged := openPR(10)
	merged.Merged = true

	tc := &fakeTracker{stories: map[int]*tracker.Story{
		42: storyWithBranches(
			tracker.Branch{Name: "feature", PullRequests: []tracker.PullRequest{openPR(17)}},
			tracker.Branch{Name: "fixup", PullRequests: []tracker.PullRequest{closed, merged}},
			tracker.Branch{Name: "landed"},
		),
	}}
	rc := &fakeReviews{byNumber: map[int]*PRReviews{
		17: {LatestCommit: review.Commit{Message: "final touches", CommittedDate: commitTime}},
	}}

	stats, err := NewAggregator(tc, rc, qaLogins, wipTerms).StoryStats(context.Background(), 42)
	if err != nil {
		t.Fatalf("StoryStats() error = %v", err)
	}
	if stats.Story == nil || stats.Story.ID != 42 {
		t.Errorf("Story = %+v, want story 42", stats.Story)
	}
	if stats.TotalBranches != 3 {
		t.Errorf("TotalBranches = %d, want 3", stats.TotalBranches)
	}
	if stats.BranchesWithOpenPRs != 1 {
		t.Errorf("BranchesWithOpenPRs = %d, want 1", stats.BranchesWithOpenPRs)
	}
	want := []PRStatus{{
		PRNumber:       17,
		RepoName:       "widgets",
		QAStatus:       review.StatusNA,
		QAStatusLatest: review.StatusNA,
		EngineerStatus: review.StatusNA,
	}}
	if diff := cmp.Diff(want, stats.AllOpenPRs); diff != "" {
		t.Errorf("AllOpenPRs mismatch (-want +got):\n%s", diff)
	}
}

func TestStoryStatsClassification(t *testing.T) {
	tests := []struct {
		name string
		data *PRReviews
		want PRStatus
	}{{
		name: "qa and engineer both approved",
		data: &PRReviews{
			Reviews: []review.Review{
				{State: "APPROVED", PublishedAt: commitTime.Add(time.Hour), Author: "qa-alice"},
				{State: "APPROVED", PublishedAt: commitTime.Add(2 * time.Hour), Author: "eng-carol"},
			},
			LatestCommit: review.Commit{Message: "ship it", CommittedDate: commitTime},
		},
		want: PRStatus{
			PRNumber:       1,
			RepoName:       "widgets",
			QAStatus:       review.StatusOK,
			QAStatusLatest: review.StatusOK,
			EngineerStatus: review.StatusOK,
		},
	}, {
		name: "stale qa rejection after a new push",
		data: &PRReviews{
			Reviews: []review.Review{
				{State: "CHANGES_REQUESTED", PublishedAt: commitTime.Add(-time.Hour), Author: "qa-alice"},
			},
			LatestCommit: review.Commit{Message: "address feedback", CommittedDate: commitTime},
		},
		want: PRStatus{
			PRNumber:       1,
			RepoName:       "widgets",
			QAStatus:       review.StatusNA,
			QAStatusLatest: review.StatusFail,
			EngineerStatus: review.StatusNA,
		},
	}, {
		name: "stale qa rejection on a wip push",
		data: &PRReviews{
			Reviews: []review.Review{
				{State: "CHANGES_REQUESTED", PublishedAt: commitTime.Add(-time.Hour), Author: "qa-bob"},
			},
			LatestCommit: review.Commit{Message: "WIP checkpoint", CommittedDate: commitTime},
		},
		want: PRStatus{
			PRNumber:          1,
			RepoName:          "widgets",
			QAStatus:          review.StatusNA,
			QAStatusLatest:    review.StatusFail,
			EngineerStatus:    review.StatusNA,
			IsLatestCommitWIP: true,
		},
	}, {
		name: "latest review per reviewer class wins",
		data: &PRReviews{
			Reviews: []review.Review{
				{State: "CHANGES_REQUESTED", PublishedAt: commitTime.Add(time.Hour), Author: "qa-alice"},
				{State: "APPROVED", PublishedAt: commitTime.Add(2 * time.Hour), Author: "qa-alice"},
				{State: "APPROVED", PublishedAt: commitTime.Add(time.Hour), Author: "eng-carol"},
				{State: "CHANGES_REQUESTED", PublishedAt: commitTime.Add(3 * time.Hour), Author: "eng-dave"},
			},
			LatestCommit: review.Commit{Message: "done", CommittedDate: commitTime},
		},
		want: PRStatus{
			PRNumber:       1,
			RepoName:       "widgets",
			QAStatus:       review.StatusOK,
			QAStatusLatest: review.StatusOK,
			EngineerStatus: review.StatusFail,
		},
	}, {
		name: "qa login comparison is exact",
		data: &PRReviews{
			Reviews: []review.Review{
				{State: "APPROVED", PublishedAt: commitTime.Add(time.Hour), Author: "QA-Alice"},
			},
			LatestCommit: review.Commit{Message: "done", CommittedDate: commitTime},
		},
		want: PRStatus{
			PRNumber:       1,
			RepoName:       "widgets",
			QAStatus:       review.StatusNA,
			QAStatusLatest: review.StatusNA,
			EngineerStatus: review.StatusOK,
		},
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := &fakeTracker{stories: map[int]*tracker.Story{
				42: storyWithBranches(tracker.Branch{PullRequests: []tracker.PullRequest{openPR(1)}}),
			}}
			rc := &fakeReviews{byNumber: map[int]*PRReviews{1: tt.data}}

			stats, err := NewAggregator(tc, rc, qaLogins, wipTerms).StoryStats(context.Background(), 42)
			if err != nil {
				t.Fatalf("StoryStats() error = %v", err)
			}
			if diff := cmp.Diff([]PRStatus{tt.want}, stats.AllOpenPRs); diff != "" {
				t.Errorf("AllOpenPRs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStoryStatsPreservesDiscoveryOrder(t *testing.T) {
	tc := &fakeTracker{stories: map[int]*tracker.Story{
		42: storyWithBranches(
			tracker.Branch{PullRequests: []tracker.PullRequest{openPR(1)}},
			tracker.Branch{PullRequests: []tracker.PullRequest{openPR(2)}},
			tracker.Branch{PullRequests: []tracker.PullRequest{openPR(3)}},
		),
	}}
	rc := &fakeReviews{
		byNumber: map[int]*PRReviews{
			1: {LatestCommit: review.Commit{CommittedDate: commitTime}},
			2: {LatestCommit: review.Commit{CommittedDate: commitTime}},
			3: {LatestCommit: review.Commit{CommittedDate: commitTime}},
		},
		// Completion order is 3, 2, 1; discovery order must still win.
		delays: map[int]time.Duration{
			1: 30 * time.Millisecond,
			2: 15 * time.Millisecond,
		},
	}

	stats, err := NewAggregator(tc, rc, qaLogins, wipTerms).StoryStats(context.Background(), 42)
	if err != nil {
		t.Fatalf("StoryStats() error = %v", err)
	}
	var got []int
	for _, pr := range stats.AllOpenPRs {
		got = append(got, pr.PRNumber)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, got); diff != "" {
		t.Errorf("PR order mismatch (-want +got):\n%s", diff)
	}
}

func TestStoryStatsReviewFetchFailure(t *testing.T) {
	tc := &fakeTracker{stories: map[int]*tracker.Story{
		42: storyWithBranches(
			tracker.Branch{PullRequests: []tracker.PullRequest{openPR(1), openPR(2)}},
		),
	}}
	rc := &fakeReviews{
		byNumber: map[int]*PRReviews{
			1: {LatestCommit: review.Commit{CommittedDate: commitTime}},
		},
		errs: map[int]error{2: fmt.Errorf("couldn't get reviews for pull request 2")},
	}

	_, err := NewAggregator(tc, rc, qaLogins, wipTerms).StoryStats(context.Background(), 42)
	if err == nil {
		t.Fatal("StoryStats() expected error when a PR's reviews are missing")
	}
}

func TestStoryStatsStoryNotFound(t *testing.T) {
	tc := &fakeTracker{stories: map[int]*tracker.Story{}}
	rc := &fakeReviews{}

	_, err := NewAggregator(tc, rc, qaLogins, wipTerms).StoryStats(context.Background(), 42)
	if !tracker.IsNotFound(err) {
		t.Fatalf("StoryStats() error = %v, want tracker not-found", err)
	}
}
