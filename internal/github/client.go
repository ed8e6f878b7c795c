package github

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/KOFI-GYIMAH/github-activity/internal/cache"
	"github.com/KOFI-GYIMAH/github-activity/internal/models"
	"github.com/KOFI-GYIMAH/github-activity/pkg/errors"
	"github.com/KOFI-GYIMAH/github-activity/pkg/logger"
)

var (
	baseURL = "https://api.github.com"
)

const (
	acceptHeader = "application/vnd.github+json"
	apiVersion   = "2022-11-28"
	reposPerPage = 100
)

type Client struct {
	httpClient           *http.Client
	token                string
	cache                *cache.Cache
	limiter              *RateLimiter
	refreshOnNotModified bool
}

func NewClient(token string, responseCache *cache.Cache) *Client {
	rl := NewRateLimiter()

	client := &http.Client{
		Timeout:   30 * time.Second,
		Transport: rl.Middleware(http.DefaultTransport),
	}

	return &Client{
		httpClient: client,
		token:      token,
		cache:      responseCache,
		limiter:    rl,
	}
}

// * SetRefreshOnNotModified makes a 304 restart the cached entry's TTL window
func (c *Client) SetRefreshOnNotModified(refresh bool) {
	c.refreshOnNotModified = refresh
}

func (c *Client) RateLimit() RateLimitStatus {
	return c.limiter.Status()
}

func (c *Client) makeRequest(ctx context.Context, method, rawURL, etag string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	return resp, nil
}

// FetchJSON returns the JSON body behind rawURL. A fresh cache entry answers
// without touching the network; otherwise a single (conditional, when an etag
// is known) request is made. Failed requests fall back to the cached payload
// whatever its age and only error when there is nothing cached.
func (c *Client) FetchJSON(ctx context.Context, rawURL string) (*Page, error) {
	if fresh := c.cache.ReadFresh(ctx, rawURL); fresh != nil {
		logger.Debug("cache hit for %s", rawURL)
		return pageFromEntry(fresh), nil
	}

	stale := c.cache.ReadAny(ctx, rawURL)
	var etag string
	if stale != nil {
		etag = stale.ETag
	}
	fallback := func(reason string) (*Page, bool) {
		if stale == nil || !stale.HasData() {
			return nil, false
		}
		logger.Warn("serving cached %s: %s", rawURL, reason)
		return pageFromEntry(stale), true
	}

	resp, err := c.makeRequest(ctx, http.MethodGet, rawURL, etag)
	if err != nil {
		if page, ok := fallback(err.Error()); ok {
			return page, nil
		}
		if stderrors.Is(err, ErrQuotaExhausted) {
			status := c.limiter.Status()
			return nil, errors.New(
				errors.RefRateLimited,
				"GitHub rate limit exceeded",
				"Quota is exhausted and nothing is cached for this request",
				&RateLimitError{Reset: strconv.FormatInt(status.Reset.Unix(), 10), Err: err},
				errors.LevelWarning,
			)
		}
		return nil, errors.New(
			errors.RefGitHubAPI,
			"Failed to reach GitHub",
			fmt.Sprintf("Could not connect to GitHub API for %s", rawURL),
			err,
			errors.LevelError,
		)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && stale != nil && stale.HasData() {
		logger.Debug("%s not modified", rawURL)
		if c.refreshOnNotModified {
			c.cache.Touch(ctx, stale)
		}
		return pageFromEntry(stale), nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if rlErr := rateLimitFrom(resp); rlErr != nil {
			if page, ok := fallback(rlErr.Error()); ok {
				return page, nil
			}
			return nil, errors.New(
				errors.RefRateLimited,
				"GitHub rate limit exceeded",
				fmt.Sprintf("GitHub throttled the request for %s", rawURL),
				rlErr,
				errors.LevelWarning,
			)
		}

		apiErr := &APIError{StatusCode: resp.StatusCode}
		if page, ok := fallback(apiErr.Error()); ok {
			return page, nil
		}
		return nil, errors.New(
			errors.RefGitHubAPI,
			"Unexpected response from GitHub API",
			fmt.Sprintf("GitHub API returned status %d for %s", resp.StatusCode, rawURL),
			apiErr,
			errors.LevelError,
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if page, ok := fallback(err.Error()); ok {
			return page, nil
		}
		return nil, errors.New(
			errors.RefGitHubAPI,
			"Failed to read GitHub API response",
			"Could not read the response body from GitHub API",
			err,
			errors.LevelError,
		)
	}

	if !json.Valid(body) {
		return nil, errors.New(
			errors.RefMalformedResponse,
			"Failed to parse GitHub API response",
			fmt.Sprintf("Response for %s is not valid JSON", rawURL),
			nil,
			errors.LevelError,
		)
	}

	data := json.RawMessage(body)
	next := ParseNextLink(resp.Header.Get("Link"))
	c.cache.Write(ctx, rawURL, resp.Header.Get("ETag"), data, next)

	return &Page{Data: data, NextLink: next}, nil
}

// FetchAllRepositories walks every page of the user's repositories, most
// recently updated first. Pages are fetched one at a time.
func (c *Client) FetchAllRepositories(ctx context.Context, username string) ([]models.Repository, error) {
	next := fmt.Sprintf("%s/users/%s/repos?per_page=%d&sort=updated", baseURL, url.PathEscape(username), reposPerPage)

	var repos []models.Repository
	seen := make(map[string]bool)

	for next != "" && !seen[next] {
		seen[next] = true

		page, err := c.FetchJSON(ctx, next)
		if err != nil {
			return nil, err
		}

		var batch []repositoryPayload
		if err := json.Unmarshal(page.Data, &batch); err != nil || len(batch) == 0 {
			break
		}

		for _, r := range batch {
			if r.FullName == "" {
				continue
			}
			repos = append(repos, models.Repository{
				Name:     r.Name,
				FullName: r.FullName,
				HTMLURL:  r.HTMLURL,
			})
		}

		next = page.NextLink
	}

	logger.Info("Fetched %d repositories for %s", len(repos), username)
	return repos, nil
}

// LatestCommits returns the most recent commit of repo as a one-element
// slice, or nothing when the payload is not a list.
func (c *Client) LatestCommits(ctx context.Context, repo models.Repository) ([]models.CommitRecord, error) {
	page, err := c.FetchJSON(ctx, fmt.Sprintf("%s/repos/%s/commits?per_page=1", baseURL, repo.FullName))
	if err != nil {
		return nil, err
	}

	var commits []commitPayload
	if err := json.Unmarshal(page.Data, &commits); err != nil {
		logger.Debug("commits payload for %s is not a list: %v", repo.FullName, err)
		return nil, nil
	}

	records := make([]models.CommitRecord, 0, len(commits))
	for _, commit := range commits {
		record := models.CommitRecord{
			Repository: repo,
			SHA:        commit.SHA,
			Message:    commit.Commit.Message,
		}
		if author := commit.Commit.Author; author != nil && author.Date != "" {
			if date, err := time.Parse(time.RFC3339, author.Date); err == nil {
				record.AuthorDate = &date
			}
		}
		records = append(records, record)
	}

	return records, nil
}

// * rateLimitFrom returns the throttling hints when resp looks rate limited
func rateLimitFrom(resp *http.Response) *RateLimitError {
	retryAfter := resp.Header.Get("Retry-After")
	remaining := resp.Header.Get("X-RateLimit-Remaining")

	if retryAfter == "" && remaining != "0" &&
		resp.StatusCode != http.StatusForbidden && resp.StatusCode != http.StatusTooManyRequests {
		return nil
	}

	return &RateLimitError{
		StatusCode: resp.StatusCode,
		RetryAfter: retryAfter,
		Reset:      resp.Header.Get("X-RateLimit-Reset"),
	}
}

func pageFromEntry(entry *models.CacheEntry) *Page {
	return &Page{Data: entry.Data, NextLink: entry.Link}
}
