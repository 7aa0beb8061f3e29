/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package config carries the action's runtime configuration, read once at
// startup. GitHub Actions deliver inputs as INPUT_* environment variables
// and runner context as GITHUB_* variables; everything is processed into a
// single struct passed to the component constructors so nothing reads the
// environment ad hoc.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the action's full configuration.
type Config struct {
	// ShortcutToken authenticates against the tracker API. ClubhouseToken is
	// the pre-rebrand input name, still honored for existing workflows.
	ShortcutToken  string `env:"INPUT_SHORTCUTTOKEN"`
	ClubhouseToken string `env:"INPUT_CLUBHOUSETOKEN"`
	GithubToken    string `env:"INPUT_GITHUBTOKEN"`

	// EndStateName is the workflow state release-referenced stories move to.
	EndStateName string `env:"INPUT_ENDSTATENAME,default=Completed"`
	// AddReleaseInfo appends a release link to each story's description.
	AddReleaseInfo bool `env:"INPUT_ADDRELEASEINFO,default=false"`
	// TeamFile optionally points at a YAML file describing the review team.
	TeamFile string `env:"INPUT_TEAMFILE"`

	States States

	// Runner context.
	EventName       string `env:"GITHUB_EVENT_NAME"`
	EventPath       string `env:"GITHUB_EVENT_PATH"`
	OutputPath      string `env:"GITHUB_OUTPUT"`
	StepSummaryPath string `env:"GITHUB_STEP_SUMMARY"`

	// Team is populated after env processing, from TeamFile or the defaults.
	Team Team
}

// States names the workflow states the pull-request pipeline moves stories
// through. The defaults match the Feature-QA workflow the action was built
// for; workspaces with different state names override them via inputs.
type States struct {
	ReadyToFeatureQA   string `env:"INPUT_READYTOFEATUREQASTATE,default=Ready to Feature QA"`
	ReadyForFeatureQA  string `env:"INPUT_READYFORFEATUREQASTATE,default=Ready for Feature QA"`
	ReadyForCodeReview string `env:"INPUT_READYFORCODEREVIEWSTATE,default=Ready for Code Review"`
	ReadyForStaging    string `env:"INPUT_READYFORSTAGINGSTATE,default=Ready for Staging"`
	TestFail           string `env:"INPUT_TESTFAILSTATE,default=Test Fail"`
}

// Team is the review-team shape: which logins count as QA reviewers, and
// which commit-message terms mark a work-in-progress checkpoint that should
// not bounce a story back to Feature QA.
type Team struct {
	QAUsernames    []string `yaml:"qaUsernames"`
	WIPBypassTerms []string `yaml:"wipBypassTerms"`
}

// DefaultTeam returns the bypass terms the action ships with. There is no
// default QA list; an empty list means every reviewer counts as an engineer.
func DefaultTeam() Team {
	return Team{
		WIPBypassTerms: []string{"wip", "work in progress", "do not review"},
	}
}

// LoadTeamFile reads a Team from a YAML file. Fields absent from the file
// keep their defaults.
func LoadTeamFile(path string) (Team, error) {
	team := DefaultTeam()
	data, err := os.ReadFile(path)
	if err != nil {
		return Team{}, fmt.Errorf("reading team file: %w", err)
	}
	if err := yaml.Unmarshal(data, &team); err != nil {
		return Team{}, fmt.Errorf("parsing team file %s: %w", path, err)
	}
	return team, nil
}

// Process reads the full configuration from the environment and resolves the
// review team from the team file, or the defaults when no file is configured.
func Process(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.TrackerToken() == "" {
		return Config{}, errors.New("one of INPUT_SHORTCUTTOKEN or INPUT_CLUBHOUSETOKEN is required")
	}
	if cfg.TeamFile == "" {
		cfg.Team = DefaultTeam()
		return cfg, nil
	}
	team, err := LoadTeamFile(cfg.TeamFile)
	if err != nil {
		return Config{}, err
	}
	cfg.Team = team
	return cfg, nil
}

// TrackerToken returns the tracker token, preferring the current input name
// over the legacy one.
func (c Config) TrackerToken() string {
	if c.ShortcutToken != "" {
		return c.ShortcutToken
	}
	return c.ClubhouseToken
}
