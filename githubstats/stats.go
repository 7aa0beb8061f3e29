/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package githubstats reconciles a story's branches and open pull requests
// against GitHub's review data.
//
// For each story it produces a StoryStats: how many branches the story has,
// how many carry an open pull request, and a per-PR grade of QA and engineer
// review standing. The grades feed the transition predicates; the branch
// counts feed the caller's eligibility precondition.
package githubstats

import (
	"context"
	"slices"
	"sort"

	"github.com/chainguard-dev/clog"
	"github.com/frontloop/storysync/review"
	"github.com/frontloop/storysync/tracker"
	"golang.org/x/sync/errgroup"
)

// PRStatus is the derived review standing of one open pull request.
type PRStatus struct {
	PRNumber int
	RepoName string
	// QAStatus grades the latest QA review, treating reviews older than the
	// latest commit as absent.
	QAStatus review.Status
	// QAStatusLatest grades the same review ignoring staleness; it detects
	// "QA said no, then the author pushed again".
	QAStatusLatest review.Status
	// EngineerStatus grades the latest non-QA review.
	EngineerStatus review.Status
	// IsLatestCommitWIP is true when the latest commit message carries a
	// work-in-progress bypass term.
	IsLatestCommitWIP bool
}

// StoryStats aggregates a story's branches and open pull requests.
// AllOpenPRs preserves the order PRs were discovered on the story. Story is
// the tracker record the stats were derived from, so callers acting on the
// outcome don't fetch it a second time.
type StoryStats struct {
	Story               *tracker.Story
	TotalBranches       int
	BranchesWithOpenPRs int
	AllOpenPRs          []PRStatus
}

// Aggregator computes StoryStats from the tracker and the VCS review API.
type Aggregator struct {
	tracker     tracker.Client
	reviews     ReviewsClient
	qaUsernames []string
	wipTerms    []string
}

// NewAggregator wires the two capabilities and the review-team shape: which
// logins count as QA reviewers, and which commit-message terms mark a
// work-in-progress checkpoint.
func NewAggregator(tc tracker.Client, rc ReviewsClient, qaUsernames, wipTerms []string) *Aggregator {
	return &Aggregator{
		tracker:     tc,
		reviews:     rc,
		qaUsernames: qaUsernames,
		wipTerms:    wipTerms,
	}
}

// StoryStats fetches the story and grades every open pull request on its
// branches. Review data for the open PRs is fetched concurrently; results
// are reassembled in discovery order.
func (a *Aggregator) StoryStats(ctx context.Context, storyID int) (*StoryStats, error) {
	story, err := a.tracker.GetStory(ctx, storyID)
	if err != nil {
		return nil, err
	}

	stats := &StoryStats{Story: story}
	var refs []Ref
	for _, branch := range story.Branches {
		stats.TotalBranches++
		for _, pr := range branch.PullRequests {
			if pr.Closed || pr.Merged {
				continue
			}
			ref, err := ParsePullRequestURL(pr)
			if err != nil {
				return nil, err
			}
			stats.BranchesWithOpenPRs++
			refs = append(refs, ref)
		}
	}

	statuses := make([]PRStatus, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		g.Go(func() error {
			status, err := a.prStatus(gctx, ref)
			if err != nil {
				return err
			}
			statuses[i] = status
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	stats.AllOpenPRs = statuses

	clog.FromContext(ctx).With("story", storyID).
		Debugf("aggregated %d branches, %d open PRs", stats.TotalBranches, stats.BranchesWithOpenPRs)
	return stats, nil
}

func (a *Aggregator) prStatus(ctx context.Context, ref Ref) (PRStatus, error) {
	data, err := a.reviews.PullRequestReviews(ctx, ref)
	if err != nil {
		return PRStatus{}, err
	}

	// Most recent first. GitHub returns the reviews in ascending order.
	nodes := slices.Clone(data.Reviews)
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].PublishedAt.After(nodes[j].PublishedAt)
	})

	var latestQA, latestEng *review.Review
	for i := range nodes {
		if a.isQAUser(nodes[i].Author) {
			if latestQA == nil {
				latestQA = &nodes[i]
			}
		} else if latestEng == nil {
			latestEng = &nodes[i]
		}
		if latestQA != nil && latestEng != nil {
			break
		}
	}

	wipSource := latestQA
	if wipSource == nil {
		wipSource = latestEng
	}

	latest := data.LatestCommit
	return PRStatus{
		PRNumber:          ref.Number,
		RepoName:          ref.Repo,
		QAStatus:          review.Classify(latestQA, latest, false),
		QAStatusLatest:    review.Classify(latestQA, latest, true),
		EngineerStatus:    review.Classify(latestEng, latest, false),
		IsLatestCommitWIP: review.IsWIP(wipSource, latest, a.wipTerms),
	}, nil
}

// isQAUser does a literal login comparison against the configured QA list.
// GitHub logins are case-insensitive, but the comparison here is exact and
// the allowlist must match the canonical login spelling.
func (a *Aggregator) isQAUser(login string) bool {
	return slices.Contains(a.qaUsernames, login)
}
