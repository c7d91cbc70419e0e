package handlers

import (
	"context"

	"github.com/chapel-lang/github-email-notifications/internal/config"
	"github.com/chapel-lang/github-email-notifications/internal/logger"
	"github.com/chapel-lang/github-email-notifications/internal/message"
)

// Resolver looks up the pull request URL for a pushed head commit. It
// returns a sentinel rather than an error: lookup failure never stops
// the pipeline.
type Resolver interface {
	Resolve(ctx context.Context, repoFullName, headSHA string) string
}

// Dispatcher sends a composed commit notification.
type Dispatcher interface {
	Send(ctx context.Context, info message.Info) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	cfg        *config.Config
	log        *logger.Logger
	resolver   Resolver
	dispatcher Dispatcher
	composer   *message.Composer
}

// New creates a new handler instance
func New(cfg *config.Config, log *logger.Logger, resolver Resolver, dispatcher Dispatcher, composer *message.Composer) *Handler {
	return &Handler{
		cfg:        cfg,
		log:        log,
		resolver:   resolver,
		dispatcher: dispatcher,
		composer:   composer,
	}
}
