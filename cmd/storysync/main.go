/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main is the action entrypoint: it reads the workflow event from the
// runner environment, routes it to the story-sync handlers, and reports the
// applied transitions back through the action output and step summary.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chainguard-dev/clog"
	"github.com/frontloop/storysync/config"
	"github.com/frontloop/storysync/githubstats"
	"github.com/frontloop/storysync/router"
	"github.com/frontloop/storysync/summary"
	"github.com/frontloop/storysync/tracker"
	"github.com/joho/godotenv"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Local runs can supply the runner environment via a .env file.
	_ = godotenv.Load()

	cfg, err := config.Process(ctx)
	if err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	tc := tracker.NewClient(cfg.TrackerToken())
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GithubToken}))
	stats := githubstats.NewAggregator(tc, githubstats.NewGQLReviews(githubv4.NewClient(hc)),
		cfg.Team.QAUsernames, cfg.Team.WIPBypassTerms)

	payload, err := os.ReadFile(cfg.EventPath)
	if err != nil {
		clog.FatalContextf(ctx, "reading event payload: %v", err)
	}

	updates, err := router.New(tc, stats, cfg).Dispatch(ctx, cfg.EventName, payload)
	if err != nil {
		clog.FatalContextf(ctx, "handling %s event: %v", cfg.EventName, err)
	}

	names := make([]string, 0, len(updates))
	for _, u := range updates {
		names = append(names, u.Name)
	}
	clog.InfoContextf(ctx, "Updated Stories: %s", strings.Join(names, ", "))

	if err := writeOutput(cfg.OutputPath, names); err != nil {
		clog.FatalContextf(ctx, "writing action output: %v", err)
	}
	if err := writeSummary(cfg.StepSummaryPath, updates); err != nil {
		clog.FatalContextf(ctx, "writing step summary: %v", err)
	}
}

// writeOutput appends the updatedStories output in the GITHUB_OUTPUT file
// format. Skipped when the runner didn't provide an output path.
func writeOutput(path string, names []string) error {
	if path == "" {
		return nil
	}
	encoded, err := json.Marshal(names)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "updatedStories=%s\n", encoded)
	return err
}

func writeSummary(path string, updates []router.Update) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	return summary.Write(f, updates)
}
