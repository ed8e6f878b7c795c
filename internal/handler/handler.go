package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/KOFI-GYIMAH/github-activity/internal/models"
	"github.com/KOFI-GYIMAH/github-activity/internal/render"
	"github.com/KOFI-GYIMAH/github-activity/pkg/errors"
	"github.com/KOFI-GYIMAH/github-activity/pkg/logger"
	"github.com/gorilla/mux"
)

type ActivityHandler struct {
	service   ActivityProvider
	limits    RateLimitReporter
	publisher RefreshPublisher
	refresher Refresher
	location  *time.Location
	now       func() time.Time
	ctx       context.Context
}

func NewActivityHandler(ctx context.Context, service ActivityProvider, limits RateLimitReporter, location *time.Location) *ActivityHandler {
	if location == nil {
		location = time.UTC
	}
	return &ActivityHandler{
		service:  service,
		limits:   limits,
		location: location,
		now:      time.Now,
		ctx:      ctx,
	}
}

// * SetPublisher routes refresh requests through the queue instead of running them in-process
func (h *ActivityHandler) SetPublisher(publisher RefreshPublisher) {
	h.publisher = publisher
}

func (h *ActivityHandler) SetRefresher(refresher Refresher) {
	h.refresher = refresher
}

func (h *ActivityHandler) RegisterRoutes(r *mux.Router) {
	routes := []struct {
		path    string
		method  string
		handler http.HandlerFunc
	}{
		{"/activity", http.MethodGet, h.getActivity},
		{"/activity/widget", http.MethodGet, h.getWidget},
		{"/activity/refresh", http.MethodPost, h.refreshActivity},
		{"/ratelimit", http.MethodGet, h.getRateLimit},
	}

	for _, route := range routes {
		r.HandleFunc(route.path, route.handler).Methods(route.method)
	}

	// * mux loses the method mismatch once a sibling route under the same prefix matches,
	// * so every path gets an explicit 405 fallback registered after the real routes
	for _, route := range routes {
		r.HandleFunc(route.path, methodNotAllowed(route.method))
	}
}

func methodNotAllowed(allowed string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allowed)
		errors.WriteHTTPError(w, errors.New(
			errors.RefMethodNotAllowed,
			"Method not allowed",
			fmt.Sprintf("%s is not supported on %s, use %s", r.Method, r.URL.Path, allowed),
			nil,
			errors.LevelInfo,
		).WithStatus(http.StatusMethodNotAllowed))
	}
}

func writeSuccess(w http.ResponseWriter, status int, data any, message ...string) {
	resp := APIResponse{
		Status: "success",
		Data:   data,
	}
	if len(message) > 0 {
		resp.Message = message[0]
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// getActivity godoc
// @Summary Recent commits
// @Description Most recent commit of each public repository, newest first
// @Tags Activity
// @Produce json
// @Success 200 {array} models.CommitRecord
// @Failure 503 {object} errors.HTTPErrorResponse "Activity unavailable"
// @Router /activity [get]
func (h *ActivityHandler) getActivity(w http.ResponseWriter, r *http.Request) {
	commits, err := h.service.RecentActivity(r.Context())
	if err != nil {
		errors.WriteHTTPError(w, err)
		return
	}

	if commits == nil {
		commits = []models.CommitRecord{}
	}

	logger.Info("Served %d commits for %s", len(commits), h.service.Username())
	writeSuccess(w, http.StatusOK, commits, "Successfully fetched recent activity")
}

// getWidget godoc
// @Summary Activity widget
// @Description HTML fragment listing recent commits, or a placeholder when nothing could be loaded
// @Tags Activity
// @Produce html
// @Success 200 {string} string "HTML fragment"
// @Router /activity/widget [get]
func (h *ActivityHandler) getWidget(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer

	commits, err := h.service.RecentActivity(r.Context())
	if err != nil {
		logger.Warn("rendering placeholder for %s: %v", h.service.Username(), err)
		err = render.WritePlaceholder(&buf)
	} else {
		err = render.WriteHTML(&buf, render.Build(commits, h.service.Username(), h.location, h.now()))
	}
	if err != nil {
		logger.Error("failed to render widget: %v", err)
		http.Error(w, render.Placeholder, http.StatusInternalServerError)
		return
	}

	// * Whole fragment is rendered before writing so the placeholder is replaced in one go
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// refreshActivity godoc
// @Summary Refresh activity
// @Description Queues a refresh of the cached GitHub responses
// @Tags Activity
// @Produce json
// @Success 202 {object} map[string]string
// @Failure 503 {object} errors.HTTPErrorResponse "Queue unavailable"
// @Router /activity/refresh [post]
func (h *ActivityHandler) refreshActivity(w http.ResponseWriter, r *http.Request) {
	username := h.service.Username()

	switch {
	case h.publisher != nil:
		if err := h.publisher.PublishRefreshRequest(r.Context(), username); err != nil {
			errors.WriteHTTPError(w, err)
			return
		}
		logger.Info("Queued refresh for %s", username)
	case h.refresher != nil:
		go h.refresher.Refresh(h.ctx)
		logger.Info("Started background refresh for %s", username)
	default:
		logger.Warn("refresh requested for %s but nothing is wired to run it", username)
	}

	writeSuccess(w, http.StatusAccepted, map[string]string{
		"username": username,
	}, "Refresh requested")
}

// getRateLimit godoc
// @Summary GitHub rate limit
// @Description Last quota headers observed from GitHub
// @Tags Activity
// @Produce json
// @Success 200 {object} github.RateLimitStatus
// @Router /ratelimit [get]
func (h *ActivityHandler) getRateLimit(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, h.limits.RateLimit(), "Successfully fetched rate limit status")
}
