package handlers_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapel-lang/github-email-notifications/internal/config"
	"github.com/chapel-lang/github-email-notifications/internal/errors"
	"github.com/chapel-lang/github-email-notifications/internal/handlers"
	"github.com/chapel-lang/github-email-notifications/internal/logger"
	"github.com/chapel-lang/github-email-notifications/internal/message"
	"github.com/chapel-lang/github-email-notifications/internal/pullrequest"
)

const testSecret = "asdf"

// pushBody mirrors the shape GitHub delivers for a merge push.
const pushBody = `{
	"ref": "the/master",
	"deleted": false,
	"compare": "http://the-url.it",
	"repository": {"full_name": "testing/test"},
	"pusher": {"name": "the-tester", "email": "the@example.com"},
	"after": "some-sha",
	"head_commit": {
		"id": "some-sha1",
		"message": "Merge pull request: A lovely\n\ncommit message.",
		"added": [],
		"removed": ["a.out", "gen"],
		"modified": ["README.md", "README", "LICENSE"]
	}
}`

// stubResolver returns a fixed URL, standing in for a lookup whose
// outcome the test controls.
type stubResolver struct {
	url string
}

func (s *stubResolver) Resolve(_ context.Context, _, _ string) string {
	return s.url
}

// stubDispatcher records what would have been emailed.
type stubDispatcher struct {
	sent []message.Info
	err  error
}

func (s *stubDispatcher) Send(_ context.Context, info message.Info) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, info)
	return nil
}

func newHandler(secret string, resolver handlers.Resolver, dispatcher handlers.Dispatcher) *handlers.Handler {
	cfg := &config.Config{}
	cfg.Webhook.Secret = secret
	cfg.Mail.Project = "Chapel"

	return handlers.New(cfg, logger.New("error", "text"), resolver, dispatcher, message.NewComposer("Chapel"))
}

func sign(secret, body string) string {
	mac := hmac.New(sha1.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha1=" + hex.EncodeToString(mac.Sum(nil))
}

func postWebhook(h *handlers.Handler, event, sig, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/commit-email", bytes.NewBufferString(body))
	req.Header.Set("X-GitHub-Event", event)
	req.Header.Set("X-Hub-Signature", sig)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.CommitEmail(rec, req)
	return rec
}

func TestCommitEmailEndToEnd(t *testing.T) {
	// The lookup "fails": the stub hands back the sentinel, the way
	// the real resolver does on a network error.
	dispatcher := &stubDispatcher{}
	h := newHandler(testSecret, &stubResolver{url: pullrequest.Unavailable}, dispatcher)

	rec := postWebhook(h, "push", sign(testSecret, pushBody), pushBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "yep")

	require.Len(t, dispatcher.sent, 1)
	info := dispatcher.sent[0]
	assert.Equal(t, message.Info{
		Repo:           "testing/test",
		Branch:         "the/master",
		Revision:       "some-sh",
		Message:        "Merge pull request: A lovely\n\ncommit message.",
		ChangedFiles:   "R a.out\nR gen\nM README.md\nM README\nM LICENSE",
		Pusher:         "the-tester",
		PusherEmail:    "the-tester <the@example.com>",
		CompareURL:     "http://the-url.it",
		PullRequestURL: pullrequest.Unavailable,
	}, info)
}

func TestCommitEmailResolvedURL(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := newHandler(testSecret, &stubResolver{url: "https://github.com/testing/test/pull/7"}, dispatcher)

	rec := postWebhook(h, "push", sign(testSecret, pushBody), pushBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, dispatcher.sent, 1)
	assert.Equal(t, "https://github.com/testing/test/pull/7", dispatcher.sent[0].PullRequestURL)
}

func TestCommitEmailNonPushEvent(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := newHandler(testSecret, &stubResolver{}, dispatcher)

	rec := postWebhook(h, "whatevs", "", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nope")
	assert.Empty(t, dispatcher.sent)
}

func TestCommitEmailInvalidSignature(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := newHandler(testSecret, &stubResolver{}, dispatcher)

	rec := postWebhook(h, "push", "sha1=bogus", pushBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nope")
	assert.Empty(t, dispatcher.sent)
}

func TestCommitEmailMissingSecret(t *testing.T) {
	dispatcher := &stubDispatcher{}
	h := newHandler("", &stubResolver{}, dispatcher)

	rec := postWebhook(h, "push", sign(testSecret, pushBody), pushBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, dispatcher.sent)
}

func TestCommitEmailDeletedBranch(t *testing.T) {
	body := `{"deleted": true, "head_commit": {"message": "Merge pull request: gone"}}`
	dispatcher := &stubDispatcher{}
	h := newHandler(testSecret, &stubResolver{}, dispatcher)

	rec := postWebhook(h, "push", sign(testSecret, body), body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nope")
	assert.Empty(t, dispatcher.sent)
}

func TestCommitEmailNonMergeCommit(t *testing.T) {
	body := `{"deleted": false, "head_commit": {"message": "fix typo"}}`
	dispatcher := &stubDispatcher{}
	h := newHandler(testSecret, &stubResolver{}, dispatcher)

	rec := postWebhook(h, "push", sign(testSecret, body), body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "nope")
	assert.Empty(t, dispatcher.sent)
}

func TestCommitEmailMalformedJSON(t *testing.T) {
	body := `{not json`
	dispatcher := &stubDispatcher{}
	h := newHandler(testSecret, &stubResolver{}, dispatcher)

	rec := postWebhook(h, "push", sign(testSecret, body), body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, dispatcher.sent)
}

func TestCommitEmailDispatchFailure(t *testing.T) {
	dispatcher := &stubDispatcher{err: errors.DispatchFailed(assert.AnError)}
	h := newHandler(testSecret, &stubResolver{url: pullrequest.Unavailable}, dispatcher)

	rec := postWebhook(h, "push", sign(testSecret, pushBody), pushBody)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCommitEmailConfigFailureFromDispatcher(t *testing.T) {
	dispatcher := &stubDispatcher{err: errors.ConfigError("sender and recipient config vars must be set")}
	h := newHandler(testSecret, &stubResolver{url: pullrequest.Unavailable}, dispatcher)

	rec := postWebhook(h, "push", sign(testSecret, pushBody), pushBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestIndexRedirect(t *testing.T) {
	h := newHandler(testSecret, &stubResolver{}, &stubDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Index(rec, req)

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "http://chapel-lang.org/", rec.Header().Get("Location"))
}

func TestHealthCheck(t *testing.T) {
	h := newHandler(testSecret, &stubResolver{}, &stubDispatcher{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
