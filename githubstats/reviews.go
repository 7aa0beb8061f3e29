/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubstats

import (
	"context"
	"fmt"

	"github.com/frontloop/storysync/review"
	"github.com/shurcooL/githubv4"
)

// PRReviews is the review data fetched for one pull request: up to the 50
// most recent reviews, plus the latest commit they would apply to.
type PRReviews struct {
	Reviews      []review.Review
	LatestCommit review.Commit
}

// ReviewsClient fetches review data for a pull request. Implemented by
// GQLReviews and by test fakes.
type ReviewsClient interface {
	PullRequestReviews(ctx context.Context, ref Ref) (*PRReviews, error)
}

// GQLReviews implements ReviewsClient against the GitHub GraphQL API.
type GQLReviews struct {
	client *githubv4.Client
}

// NewGQLReviews wraps a githubv4 client.
func NewGQLReviews(client *githubv4.Client) *GQLReviews {
	return &GQLReviews{client: client}
}

// PullRequestReviews queries the last 50 reviews on ref along with the PR's
// latest commit. A response without a reviews collection is a hard error; it
// means the PR is not visible to the token, and grading it as "no reviews"
// would wrongly pass the story along.
func (g *GQLReviews) PullRequestReviews(ctx context.Context, ref Ref) (*PRReviews, error) {
	var query struct {
		Repository struct {
			PullRequest struct {
				Reviews *struct {
					TotalCount int
					Nodes      []struct {
						State           string
						PublishedAt     githubv4.DateTime
						MinimizedReason string
						Author          struct {
							Login string
						}
					}
				} `graphql:"reviews(last: 50)"`
				Commits struct {
					Nodes []struct {
						Commit struct {
							Message       string
							CommittedDate githubv4.DateTime
						}
					}
				} `graphql:"commits(last: 1)"`
			} `graphql:"pullRequest(number: $number)"`
		} `graphql:"repository(owner: $owner, name: $repo)"`
	}

	variables := map[string]any{
		"owner":  githubv4.String(ref.Owner),
		"repo":   githubv4.String(ref.Repo),
		"number": githubv4.Int(ref.Number),
	}

	if err := g.client.Query(ctx, &query, variables); err != nil {
		return nil, fmt.Errorf("querying reviews for %s: %w", ref, err)
	}
	if query.Repository.PullRequest.Reviews == nil {
		return nil, fmt.Errorf("couldn't get reviews for pull request %d", ref.Number)
	}

	out := new(PRReviews)
	for _, n := range query.Repository.PullRequest.Reviews.Nodes {
		out.Reviews = append(out.Reviews, review.Review{
			State:           n.State,
			PublishedAt:     n.PublishedAt.Time,
			Author:          n.Author.Login,
			MinimizedReason: n.MinimizedReason,
		})
	}
	if nodes := query.Repository.PullRequest.Commits.Nodes; len(nodes) > 0 {
		out.LatestCommit = review.Commit{
			Message:       nodes[0].Commit.Message,
			CommittedDate: nodes[0].Commit.CommittedDate.Time,
		}
	}
	return out, nil
}
