package crashreport

import (
	"fmt"
	"net/http"

	"github.com/rollbar/rollbar-go"

	"github.com/chapel-lang/github-email-notifications/internal/config"
	"github.com/chapel-lang/github-email-notifications/internal/logger"
)

// Reporter forwards unexpected failures to rollbar for operator
// visibility. With no access token configured it becomes a no-op, so
// callers never need to guard their report calls.
type Reporter struct {
	enabled bool
	log     *logger.Logger
}

// Init configures rollbar once at startup and returns the reporter.
func Init(cfg config.RollbarConfig, log *logger.Logger) *Reporter {
	if cfg.AccessToken == "" {
		log.Warn("Rollbar access token not configured, crash reporting disabled")
		return &Reporter{log: log}
	}

	rollbar.SetToken(cfg.AccessToken)
	rollbar.SetEnvironment(cfg.Environment)
	log.Infof("Crash reporting enabled for environment %q", cfg.Environment)

	return &Reporter{enabled: true, log: log}
}

// Panic reports a recovered panic together with the request that
// triggered it.
func (r *Reporter) Panic(value interface{}, req *http.Request) {
	if !r.enabled {
		return
	}
	rollbar.Critical(fmt.Errorf("panic in request handler: %v", value), req)
}

// Error reports an unexpected error.
func (r *Reporter) Error(err error) {
	if !r.enabled {
		return
	}
	rollbar.Error(err)
}

// Close flushes pending reports. Called during shutdown.
func (r *Reporter) Close() {
	if !r.enabled {
		return
	}
	rollbar.Close()
}
