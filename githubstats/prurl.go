/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubstats

import (
	"fmt"
	"strings"

	"github.com/frontloop/storysync/tracker"
)

const githubURLPrefix = "https://github.com/"

// Ref identifies a pull request by owner, repository and number.
type Ref struct {
	Owner  string
	Repo   string
	Number int
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// ParsePullRequestURL derives a Ref from the tracker's pull-request record:
// owner and repository come from the URL (everything from "/pull" onward is
// discarded), the number from the record itself.
func ParsePullRequestURL(pr tracker.PullRequest) (Ref, error) {
	trimmed := strings.TrimPrefix(pr.URL, githubURLPrefix)
	if i := strings.Index(trimmed, "/pull"); i >= 0 {
		trimmed = trimmed[:i]
	}
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Ref{}, fmt.Errorf("unrecognized pull request URL %q", pr.URL)
	}
	return Ref{Owner: parts[0], Repo: parts[1], Number: pr.Number}, nil
}
