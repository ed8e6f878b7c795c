package github

import (
	"encoding/json"
	"fmt"
)

// * One fetched page; NextLink is empty on the last page
type Page struct {
	Data     json.RawMessage
	NextLink string
}

type repositoryPayload struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	HTMLURL  string `json:"html_url"`
}

type commitPayload struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  *struct {
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// * RateLimitError carries the hints GitHub sent with a throttled response
type RateLimitError struct {
	StatusCode int
	RetryAfter string
	Reset      string
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github rate limit: status=%d retry-after=%s reset=%s",
		e.StatusCode, orNA(e.RetryAfter), orNA(e.Reset))
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// * APIError is any other non-success response
type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github api error %d", e.StatusCode)
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
