// Package classify decides which webhook deliveries produce a
// notification.
package classify

import (
	"fmt"
	"strings"

	"github.com/chapel-lang/github-email-notifications/internal/models"
)

// Decision is the outcome of classifying a webhook delivery.
type Decision int

const (
	// Ignore means the delivery is acknowledged but produces no email.
	Ignore Decision = iota
	// Process means the delivery is an actionable merge push.
	Process
)

// EventPush is the GitHub event name for push deliveries.
const EventPush = "push"

// mergeMarker is the prefix GitHub puts on merge commit messages when
// a pull request is merged through the web UI.
const mergeMarker = "Merge pull request"

// Classify decides whether a delivery represents a merge push worth
// notifying about. The event type is checked before the payload is
// touched: non-push deliveries may not carry push fields at all. The
// second return value is the reason a delivery was ignored.
func Classify(eventType string, payload *models.PushPayload) (Decision, string) {
	if eventType != EventPush {
		return Ignore, fmt.Sprintf("unsupported event %q", eventType)
	}

	if payload == nil {
		return Ignore, "missing payload"
	}

	if !strings.Contains(payload.HeadCommit.Message, mergeMarker) {
		return Ignore, "head commit is not a pull request merge"
	}

	if payload.Deleted {
		return Ignore, "branch was deleted"
	}

	return Process, ""
}
