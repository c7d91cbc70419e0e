// Package message builds the semantic content of commit notification
// emails from push payloads.
package message

import (
	"fmt"
	"strings"

	"github.com/chapel-lang/github-email-notifications/internal/models"
)

// Info holds the notification's semantic content. Built once per
// event and passed by value to the dispatcher.
type Info struct {
	Repo           string
	Branch         string
	Revision       string
	Message        string
	ChangedFiles   string
	Pusher         string
	PusherEmail    string
	CompareURL     string
	PullRequestURL string
}

// revisionLength is the number of commit id characters shown.
const revisionLength = 7

// subjectLimit caps the subject seed length.
const subjectLimit = 50

// Composer turns push payloads into notification content.
type Composer struct {
	// Project is the label used in the subject line, e.g. "Chapel"
	// yields subjects of the form "[Chapel Merge] ...".
	Project string
}

// NewComposer creates a composer with the given project label.
func NewComposer(project string) *Composer {
	return &Composer{Project: project}
}

// Compose builds the notification content for one push. prURL is the
// resolved pull request URL or the lookup's sentinel, never empty.
func (c *Composer) Compose(payload *models.PushPayload, prURL string) Info {
	head := payload.HeadCommit

	return Info{
		Repo:           payload.Repository.FullName,
		Branch:         payload.Ref,
		Revision:       shortRevision(head.ID),
		Message:        head.Message,
		ChangedFiles:   formatChangedFiles(head.Added, head.Removed, head.Modified),
		Pusher:         payload.Pusher.Name,
		PusherEmail:    fmt.Sprintf("%s <%s>", payload.Pusher.Name, payload.Pusher.Email),
		CompareURL:     payload.Compare,
		PullRequestURL: prURL,
	}
}

// Subject derives the email subject from the commit message. GitHub
// merge commits put the author's message on the third line, after the
// "Merge pull request #N ..." line and a blank separator, so the third
// line is used when present and the first line otherwise. The seed is
// capped at 50 characters.
func (c *Composer) Subject(commitMessage string) string {
	lines := splitLines(commitMessage)

	seed := lines[0]
	if len(lines) >= 3 {
		seed = lines[2]
	}
	if len(seed) > subjectLimit {
		seed = seed[:subjectLimit]
	}

	return fmt.Sprintf("[%s Merge] %s", c.Project, seed)
}

// splitLines splits on newlines without producing a trailing empty
// line for messages that end with one.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// formatChangedFiles renders the changed-files listing: one line per
// path prefixed A/R/M, added then removed then modified, with empty
// groups omitted so the listing never contains blank lines.
func formatChangedFiles(added, removed, modified []string) string {
	groups := []struct {
		prefix string
		files  []string
	}{
		{"A", added},
		{"R", removed},
		{"M", modified},
	}

	var parts []string
	for _, g := range groups {
		if len(g.files) == 0 {
			continue
		}
		lines := make([]string, len(g.files))
		for i, f := range g.files {
			lines[i] = g.prefix + " " + f
		}
		parts = append(parts, strings.Join(lines, "\n"))
	}

	return strings.Join(parts, "\n")
}

// shortRevision returns the first 7 characters of the commit id,
// fewer if the id is shorter.
func shortRevision(id string) string {
	if len(id) > revisionLength {
		return id[:revisionLength]
	}
	return id
}
