package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshRequestEncoding(t *testing.T) {
	requestedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	body, err := encodeRefreshRequest(RefreshRequest{Username: "octocat", RequestedAt: requestedAt})
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"octocat","requested_at":"2024-03-01T12:00:00Z"}`, string(body))

	req, err := decodeRefreshRequest(body)
	require.NoError(t, err)
	assert.Equal(t, "octocat", req.Username)
	assert.True(t, req.RequestedAt.Equal(requestedAt))
}

func TestDecodeRefreshRequest_Invalid(t *testing.T) {
	_, err := decodeRefreshRequest([]byte(`not json`))
	assert.Error(t, err)

	_, err = decodeRefreshRequest([]byte(`{"requested_at":"2024-03-01T12:00:00Z"}`))
	assert.Error(t, err)
}

func TestNewRabbitMQ_BadURL(t *testing.T) {
	_, err := NewRabbitMQ("not-a-url")
	assert.Error(t, err)
}
