// Package pullrequest looks up the pull request behind a merge push.
package pullrequest

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v59/github"

	"github.com/chapel-lang/github-email-notifications/internal/config"
	"github.com/chapel-lang/github-email-notifications/internal/logger"
)

// Unavailable is the sentinel returned when the lookup cannot produce
// a real URL. Notifications always carry either a URL or this value,
// never an empty string.
const Unavailable = "Unavailable"

// Resolver resolves the pull request URL for a pushed head commit via
// the GitHub commits/{sha}/pulls API. The lookup is best effort: any
// failure yields the Unavailable sentinel and never aborts the
// caller's pipeline.
type Resolver struct {
	client  *github.Client
	timeout time.Duration
	log     *logger.Logger
}

// New creates a resolver. An APIBaseURL override points the client at
// a different API host (GitHub Enterprise, or a test server).
func New(cfg config.GitHubConfig, log *logger.Logger) (*Resolver, error) {
	client := github.NewClient(&http.Client{Timeout: cfg.LookupTimeout})

	if cfg.APIBaseURL != "" {
		base, err := url.Parse(cfg.APIBaseURL)
		if err != nil {
			return nil, err
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		client.BaseURL = base
	}

	return &Resolver{
		client:  client,
		timeout: cfg.LookupTimeout,
		log:     log,
	}, nil
}

// Resolve returns the HTML URL of the first pull request associated
// with headSHA, or Unavailable. Single attempt, bounded by the
// configured timeout.
func (r *Resolver) Resolve(ctx context.Context, repoFullName, headSHA string) string {
	owner, repo, ok := strings.Cut(repoFullName, "/")
	if !ok {
		r.log.Warnf("Malformed repository name %q, skipping pull request lookup", repoFullName)
		return Unavailable
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	prs, _, err := r.client.PullRequests.ListPullRequestsWithCommit(ctx, owner, repo, headSHA, nil)
	if err != nil {
		r.log.Errorf("Could not fetch PR url from github: %v", err)
		return Unavailable
	}

	if len(prs) == 0 || prs[0].GetHTMLURL() == "" {
		r.log.Warnf("No pull request found for commit %s", headSHA)
		return Unavailable
	}

	return prs[0].GetHTMLURL()
}
