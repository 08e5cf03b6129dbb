package xapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetsweep/internal/domain"
)

func testRegistry(t *testing.T) *domain.Registry {
	t.Helper()

	registry := domain.NewRegistry()
	require.True(t, registry.Register(domain.Endpoint{
		OperationName: "UserTweets",
		OperationID:   "abc123",
		Path:          "/i/api/graphql/abc123/UserTweets",
	}))
	require.True(t, registry.Register(domain.Endpoint{
		OperationName: "DeleteTweet",
		OperationID:   "def456",
		Path:          "/i/api/graphql/def456/DeleteTweet",
	}))
	return registry
}

func testCreds() domain.Credentials {
	return domain.Credentials{Bearer: "Bearer token-123", CSRF: "csrf-456", UserID: "42"}
}

func newClientAgainst(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(server.Client(), Config{
		BaseURL:         server.URL,
		CookieHeader:    "ct0=csrf-456; twid=u%3D42",
		ListOperation:   "UserTweets",
		DeleteOperation: "DeleteTweet",
	}, testCreds(), testRegistry(t))
}

func TestUserTimelineRequestShape(t *testing.T) {
	var captured *http.Request
	client := newClientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		_, _ = w.Write([]byte(`{"data":{}}`))
	})

	body, err := client.UserTimeline(context.Background(), "42", 40)
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{}}`, string(body))

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodGet, captured.Method)
	assert.Equal(t, "/i/api/graphql/abc123/UserTweets", captured.URL.Path)
	assert.Equal(t, "Bearer token-123", captured.Header.Get("authorization"))
	assert.Equal(t, "csrf-456", captured.Header.Get("x-csrf-token"))
	assert.Equal(t, "yes", captured.Header.Get("x-twitter-active-user"))
	assert.Equal(t, "ct0=csrf-456; twid=u%3D42", captured.Header.Get("Cookie"))

	var variables map[string]any
	require.NoError(t, json.Unmarshal([]byte(captured.URL.Query().Get("variables")), &variables))
	assert.Equal(t, "42", variables["userId"])
	assert.Equal(t, float64(40), variables["count"])

	assert.True(t, json.Valid([]byte(captured.URL.Query().Get("features"))))
	assert.True(t, json.Valid([]byte(captured.URL.Query().Get("fieldToggles"))))
}

func TestDeletePostRequestShape(t *testing.T) {
	var captured *http.Request
	var capturedBody []byte
	client := newClientAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		capturedBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"data":{"delete_tweet":{}}}`))
	})

	require.NoError(t, client.DeletePost(context.Background(), "1234567890"))

	require.NotNil(t, captured)
	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "/i/api/graphql/def456/DeleteTweet", captured.URL.Path)
	assert.Equal(t, "application/json", captured.Header.Get("content-type"))
	assert.JSONEq(t,
		`{"variables":{"tweet_id":"1234567890","dark_request":false},"queryId":"def456"}`,
		string(capturedBody))
}

func TestUnauthorizedMapsToSessionExpired(t *testing.T) {
	client := newClientAgainst(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad csrf", http.StatusForbidden)
	})

	err := client.DeletePost(context.Background(), "1")
	require.ErrorIs(t, err, ErrSessionExpired)

	_, err = client.UserTimeline(context.Background(), "42", 40)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestServerErrorIsNotSessionExpired(t *testing.T) {
	client := newClientAgainst(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	err := client.DeletePost(context.Background(), "1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionExpired)
	assert.Contains(t, err.Error(), "503")
}

func TestUnknownOperationFailsFast(t *testing.T) {
	client := NewClient(http.DefaultClient, Config{
		BaseURL:         "http://unused.invalid",
		ListOperation:   "UserTweets",
		DeleteOperation: "DeleteTweet",
	}, testCreds(), domain.NewRegistry())

	_, err := client.UserTimeline(context.Background(), "42", 40)
	require.ErrorIs(t, err, domain.ErrEndpointNotFound)

	err = client.DeletePost(context.Background(), "1")
	require.ErrorIs(t, err, domain.ErrEndpointNotFound)
}
