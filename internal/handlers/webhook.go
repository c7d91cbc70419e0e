package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/chapel-lang/github-email-notifications/internal/classify"
	"github.com/chapel-lang/github-email-notifications/internal/errors"
	"github.com/chapel-lang/github-email-notifications/internal/models"
	"github.com/chapel-lang/github-email-notifications/internal/signature"
)

const (
	eventHeader     = "X-GitHub-Event"
	signatureHeader = "X-Hub-Signature"
)

// Acknowledgement bodies. GitHub ignores the response body; the
// wording only matters for operators reading delivery logs.
const (
	ackProcessed = "yep"
	ackSkipped   = "nope"
)

// CommitEmail receives a push webhook from GitHub and turns it into a
// commit notification email. Expected validation failures (unsupported
// event, bad signature, non-merge commit, deleted branch) are
// acknowledged with 200 so GitHub does not mark the hook as failing.
func (h *Handler) CommitEmail(w http.ResponseWriter, r *http.Request) {
	event := r.Header.Get(eventHeader)
	h.log.Infof("Received %q event from github", event)

	// Only push events carry the fields the pipeline reads; everything
	// else is skipped before the body is touched.
	if event != classify.EventPush {
		h.log.Infof("Skipping %q event", event)
		h.writeAck(w, ackSkipped)
		return
	}

	if h.cfg.Webhook.Secret == "" {
		h.log.Error("No secret configured in environment", nil)
		h.writeAppError(w, errors.ConfigError("no webhook secret configured"))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.writeAppError(w, errors.InvalidRequest("Failed to read request body: "+err.Error()))
		return
	}

	if !signature.Verify(h.cfg.Webhook.Secret, body, r.Header.Get(signatureHeader)) {
		h.log.Warn("Invalid signature, skipping request")
		h.writeAck(w, ackSkipped)
		return
	}

	var payload models.PushPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		h.writeAppError(w, errors.InvalidRequest("Invalid webhook payload: "+err.Error()))
		return
	}

	if decision, reason := classify.Classify(event, &payload); decision == classify.Ignore {
		h.log.Infof("Skipping push event: %s", reason)
		h.writeAck(w, ackSkipped)
		return
	}

	ctx := r.Context()

	// Best effort: on failure the resolver hands back its sentinel and
	// the email goes out without a PR link.
	prURL := h.resolver.Resolve(ctx, payload.Repository.FullName, payload.After)

	info := h.composer.Compose(&payload, prURL)
	if err := h.dispatcher.Send(ctx, info); err != nil {
		h.log.Error("Failed to send commit notification", err)
		h.writeAppError(w, errors.From(err))
		return
	}

	h.log.Infof("Commit notification sent for %s@%s", info.Repo, info.Revision)
	h.writeAck(w, ackProcessed)
}
