// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gather

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/snlongmore/morning-report/pkg/types"
)

// ghRunner abstracts gh CLI execution for testing.
type ghRunner interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, args ...string) ([]byte, error)
}

// osGhRunner is the production runner backed by os/exec.
type osGhRunner struct {
	timeout time.Duration
}

func (r *osGhRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (r *osGhRunner) Output(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "gh", args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("gh %s: %s", args[0], msg)
	}
	return stdout.Bytes(), nil
}

// Notification is one GitHub notification, reduced to briefing fields.
type Notification struct {
	Title     string `json:"title"`
	Type      string `json:"type"`
	Repo      string `json:"repo"`
	Reason    string `json:"reason"`
	UpdatedAt string `json:"updated_at"`
}

// SearchItem is one PR or issue from a gh search.
type SearchItem struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Repository struct {
		NameWithOwner string `json:"nameWithOwner"`
	} `json:"repository"`
	CreatedAt string `json:"createdAt"`
}

// GitHubReport is the github gatherer payload.
type GitHubReport struct {
	Notifications     []Notification `json:"notifications"`
	NotificationCount int            `json:"notification_count"`
	PRsToReview       []SearchItem   `json:"prs_to_review"`
	AssignedIssues    []SearchItem   `json:"assigned_issues"`
}

// notificationCap bounds the briefing's notification list.
const notificationCap = 20

// GitHubGatherer collects notifications, review requests, and assigned
// issues by shelling out to the gh CLI, which already holds the user's
// credentials. Each of the three queries degrades independently.
type GitHubGatherer struct {
	runner ghRunner
	log    *logrus.Logger
}

// NewGitHubGatherer returns a gh-backed gatherer.
func NewGitHubGatherer(cfg types.GitHubConfig, log *logrus.Logger) *GitHubGatherer {
	timeout := cfg.CommandTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GitHubGatherer{runner: &osGhRunner{timeout: timeout}, log: log}
}

// Name implements Gatherer.
func (g *GitHubGatherer) Name() string { return string(SourceGitHub) }

// Available reports whether the gh binary is on PATH.
func (g *GitHubGatherer) Available() bool {
	_, err := g.runner.LookPath("gh")
	return err == nil
}

// Gather runs the three gh queries. A failed query leaves its section
// empty; only a briefing with no GitHub data at all is worth surfacing as
// a source error, and even that is handled by the empty payload.
func (g *GitHubGatherer) Gather(ctx context.Context) (any, error) {
	report := GitHubReport{
		Notifications:  []Notification{},
		PRsToReview:    []SearchItem{},
		AssignedIssues: []SearchItem{},
	}

	notifs, err := g.fetchNotifications(ctx)
	if err != nil {
		g.log.WithField("error", err).Warn("github notifications fetch failed")
	} else {
		report.NotificationCount = len(notifs)
		if len(notifs) > notificationCap {
			notifs = notifs[:notificationCap]
		}
		report.Notifications = notifs
	}

	if prs, err := g.search(ctx, "prs", "--review-requested=@me"); err != nil {
		g.log.WithField("error", err).Warn("github PR search failed")
	} else {
		report.PRsToReview = prs
	}

	if issues, err := g.search(ctx, "issues", "--assignee=@me"); err != nil {
		g.log.WithField("error", err).Warn("github issue search failed")
	} else {
		report.AssignedIssues = issues
	}

	return report, nil
}

func (g *GitHubGatherer) fetchNotifications(ctx context.Context) ([]Notification, error) {
	out, err := g.runner.Output(ctx,
		"api", "notifications",
		"--jq", `[.[] | {title: .subject.title, type: .subject.type, repo: .repository.full_name, reason: .reason, updated_at: .updated_at}]`,
	)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return []Notification{}, nil
	}

	var notifs []Notification
	if err := json.Unmarshal(out, &notifs); err != nil {
		return nil, fmt.Errorf("parsing notifications: %w", err)
	}
	return notifs, nil
}

func (g *GitHubGatherer) search(ctx context.Context, kind, filter string) ([]SearchItem, error) {
	out, err := g.runner.Output(ctx,
		"search", kind, "--state=open", filter,
		"--json", "title,url,repository,createdAt",
		"--limit", "10",
	)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(out)) == 0 {
		return []SearchItem{}, nil
	}

	var items []SearchItem
	if err := json.Unmarshal(out, &items); err != nil {
		return nil, fmt.Errorf("parsing %s search: %w", kind, err)
	}
	return items, nil
}
