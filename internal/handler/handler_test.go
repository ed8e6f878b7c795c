package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/KOFI-GYIMAH/github-activity/internal/github"
	"github.com/KOFI-GYIMAH/github-activity/internal/models"
	"github.com/KOFI-GYIMAH/github-activity/pkg/errors"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockActivityProvider struct {
	mock.Mock
}

func (m *MockActivityProvider) RecentActivity(ctx context.Context) ([]models.CommitRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CommitRecord), args.Error(1)
}

func (m *MockActivityProvider) Username() string {
	return "octocat"
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishRefreshRequest(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

type fixedLimits struct {
	status github.RateLimitStatus
}

func (f fixedLimits) RateLimit() github.RateLimitStatus { return f.status }

type refresherFunc func(ctx context.Context)

func (f refresherFunc) Refresh(ctx context.Context) { f(ctx) }

func newTestRouter(h *ActivityHandler) *mux.Router {
	router := mux.NewRouter()
	h.RegisterRoutes(router.PathPrefix("/v1").Subrouter())
	return router
}

func sampleCommits() []models.CommitRecord {
	when := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []models.CommitRecord{{
		Repository: models.Repository{Name: "repo", FullName: "octocat/repo", HTMLURL: "https://github.com/octocat/repo"},
		SHA:        "0123456789",
		Message:    "Add <feature>",
		AuthorDate: &when,
	}}
}

func unavailable() error {
	return errors.New(errors.RefActivityUnavailable, "GitHub activity is unavailable", "", nil, errors.LevelWarning).
		WithStatus(http.StatusServiceUnavailable)
}

func TestGetActivity(t *testing.T) {
	tests := []struct {
		name           string
		commits        []models.CommitRecord
		err            error
		expectedStatus int
	}{
		{
			name:           "success",
			commits:        sampleCommits(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unavailable",
			err:            unavailable(),
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := new(MockActivityProvider)
			if tt.err != nil {
				provider.On("RecentActivity", mock.Anything).Return(nil, tt.err)
			} else {
				provider.On("RecentActivity", mock.Anything).Return(tt.commits, nil)
			}

			h := NewActivityHandler(context.Background(), provider, fixedLimits{}, time.UTC)
			rec := httptest.NewRecorder()
			newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/activity", nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			if tt.err == nil {
				var body struct {
					Status string                `json:"status"`
					Data   []models.CommitRecord `json:"data"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, "success", body.Status)
				require.Len(t, body.Data, 1)
				assert.Equal(t, "0123456789", body.Data[0].SHA)
			} else {
				assert.Contains(t, rec.Body.String(), errors.RefActivityUnavailable)
			}
			provider.AssertExpectations(t)
		})
	}
}

func TestGetWidget(t *testing.T) {
	t.Run("renders escaped commits", func(t *testing.T) {
		provider := new(MockActivityProvider)
		provider.On("RecentActivity", mock.Anything).Return(sampleCommits(), nil)

		h := NewActivityHandler(context.Background(), provider, fixedLimits{}, nil)
		rec := httptest.NewRecorder()
		newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/activity/widget", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "Add &lt;feature&gt;")
		assert.Contains(t, rec.Body.String(), "0123456")
		assert.NotContains(t, rec.Body.String(), "<feature>")
	})

	t.Run("placeholder without technical detail", func(t *testing.T) {
		provider := new(MockActivityProvider)
		provider.On("RecentActivity", mock.Anything).Return(nil, unavailable())

		h := NewActivityHandler(context.Background(), provider, fixedLimits{}, nil)
		rec := httptest.NewRecorder()
		newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/activity/widget", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Unable to load GitHub activity.")
		assert.NotContains(t, rec.Body.String(), errors.RefActivityUnavailable)
	})
}

func TestRefreshActivity(t *testing.T) {
	t.Run("publishes to queue", func(t *testing.T) {
		publisher := new(MockPublisher)
		publisher.On("PublishRefreshRequest", mock.Anything, "octocat").Return(nil)

		h := NewActivityHandler(context.Background(), new(MockActivityProvider), fixedLimits{}, nil)
		h.SetPublisher(publisher)

		rec := httptest.NewRecorder()
		newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/activity/refresh", nil))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		publisher.AssertExpectations(t)
	})

	t.Run("queue failure", func(t *testing.T) {
		publisher := new(MockPublisher)
		publisher.On("PublishRefreshRequest", mock.Anything, "octocat").
			Return(errors.New(errors.RefQueue, "Failed to publish refresh request", "", nil, errors.LevelWarning))

		h := NewActivityHandler(context.Background(), new(MockActivityProvider), fixedLimits{}, nil)
		h.SetPublisher(publisher)

		rec := httptest.NewRecorder()
		newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/activity/refresh", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("runs in background without queue", func(t *testing.T) {
		done := make(chan struct{})
		h := NewActivityHandler(context.Background(), new(MockActivityProvider), fixedLimits{}, nil)
		h.SetRefresher(refresherFunc(func(ctx context.Context) { close(done) }))

		rec := httptest.NewRecorder()
		newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/activity/refresh", nil))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("refresh was not started")
		}
	})
}

func TestGetRateLimit(t *testing.T) {
	reset := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)
	h := NewActivityHandler(context.Background(), new(MockActivityProvider), fixedLimits{status: github.RateLimitStatus{
		Observed:  true,
		Limit:     60,
		Remaining: 12,
		Reset:     reset,
	}}, nil)

	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ratelimit", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data github.RateLimitStatus `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 12, body.Data.Remaining)
	assert.True(t, body.Data.Reset.Equal(reset))
}

func TestUnknownMethod(t *testing.T) {
	tests := []struct {
		method string
		path   string
		allow  string
	}{
		{http.MethodDelete, "/v1/activity", http.MethodGet},
		{http.MethodPost, "/v1/activity/widget", http.MethodGet},
		{http.MethodGet, "/v1/activity/refresh", http.MethodPost},
		{http.MethodPut, "/v1/ratelimit", http.MethodGet},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			service := new(MockActivityProvider)
			h := NewActivityHandler(context.Background(), service, fixedLimits{}, nil)
			rec := httptest.NewRecorder()
			newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, tt.allow, rec.Header().Get("Allow"))

			var resp errors.HTTPErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, errors.RefMethodNotAllowed, resp.ErrorRef)
			service.AssertNotCalled(t, "RecentActivity", mock.Anything)
		})
	}
}

func TestUnknownPath(t *testing.T) {
	h := NewActivityHandler(context.Background(), new(MockActivityProvider), fixedLimits{}, nil)
	rec := httptest.NewRecorder()
	newTestRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/activity/unknown", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
