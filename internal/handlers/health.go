package handlers

import (
	"net/http"
	"time"

	"github.com/chapel-lang/github-email-notifications/internal/models"
)

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := &models.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().Unix(),
	}

	h.writeJSON(w, response, http.StatusOK)
}

// Index redirects to the Chapel homepage.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, "http://chapel-lang.org/", http.StatusMovedPermanently)
}
