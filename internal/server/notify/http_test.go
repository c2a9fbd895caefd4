package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSink_PostsEventWithServiceToken(t *testing.T) {
	var gotToken, gotType string
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Service-Token")
		gotType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sink := NewHTTPSink(srv.URL, "svc-secret", time.Second)
	require.NoError(t, sink.Send(context.Background(), failedEvent("t1", "invalid PIN")))

	assert.Equal(t, "svc-secret", gotToken)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "t1", body["trans_id"])
	assert.Equal(t, "failed", body["status"])
	assert.Equal(t, "invalid PIN", body["reason"])
	assert.Equal(t, "50", body["amount"])
	assert.Equal(t, map[string]any{"username": "alice", "phone": "+1"}, body["sender_doc"])
}

func TestHTTPSink_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewHTTPSink(srv.URL, "wrong", time.Second).Send(context.Background(), completedEvent("t1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestHTTPSink_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	err := NewHTTPSink(srv.URL, "s", 50*time.Millisecond).Send(context.Background(), completedEvent("t1"))
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHTTPSink_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	require.Error(t, NewHTTPSink(url, "s", time.Second).Send(context.Background(), completedEvent("t1")))
}
