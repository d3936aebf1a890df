package chatapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myrsple/azv-bot/internal/domain"
)

func TestClientRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/thread":
			fmt.Fprint(w, `{"id":"thread_1","object":"thread","created_at":1}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/thread/thread_1/message":
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "What is AZV?", req["content"])
			fmt.Fprint(w, `{"id":"msg_1","role":"user","content":[{"type":"text","text":{"value":"What is AZV?","annotations":[]}}]}`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/thread/thread_1/run":
			fmt.Fprint(w, `{"id":"run_1","thread_id":"thread_1","status":"queued"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/thread/thread_1/run/run_1":
			fmt.Fprint(w, `{"id":"run_1","thread_id":"thread_1","status":"completed"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/thread/thread_1/messages":
			fmt.Fprint(w, `{"object":"list","data":[{"id":"msg_2","role":"assistant","run_id":"run_1","content":[{"type":"text","text":{"value":"Hi","annotations":[]}}]}]}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	client := NewClient(server.URL + "/")

	thread, err := client.CreateThread(ctx)
	require.NoError(t, err)
	assert.Equal(t, "thread_1", thread.ID)

	msg, err := client.PostMessage(ctx, thread.ID, "What is AZV?")
	require.NoError(t, err)
	assert.Equal(t, "msg_1", msg.ID)

	run, err := client.StartRun(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusQueued, run.Status)

	run, err = client.GetRun(ctx, thread.ID, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompleted, run.Status)

	list, err := client.ListMessages(ctx, thread.ID)
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "run_1", list.Data[0].RunID)
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "empty content",
			status: http.StatusBadRequest,
			body:   `{"error":"message content is empty"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrEmptyContent)
			},
		},
		{
			name:   "policy",
			status: http.StatusBadRequest,
			body:   `{"error":"message rejected by policy: message is too long"}`,
			check: func(t *testing.T, err error) {
				var v *domain.PolicyViolation
				require.True(t, errors.As(err, &v))
				assert.Equal(t, "message is too long", v.Reason)
			},
		},
		{
			name:   "run in flight",
			status: http.StatusConflict,
			body:   `{"error":"a run is already in flight for this thread"}`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrRunInFlight)
			},
		},
		{
			name:   "server failure",
			status: http.StatusInternalServerError,
			body:   `{"error":"Failed to add message"}`,
			check: func(t *testing.T, err error) {
				var perr *domain.ProviderError
				require.True(t, errors.As(err, &perr))
				assert.Equal(t, "PostMessage", perr.Op)
				assert.Equal(t, http.StatusInternalServerError, perr.StatusCode)
				assert.Contains(t, perr.Error(), "Failed to add message")
			},
		},
		{
			name:   "plain text body",
			status: http.StatusBadGateway,
			body:   "",
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "Bad Gateway")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			_, err := NewClient(server.URL).PostMessage(context.Background(), "thread_1", "hi")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClientUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewClient(url).CreateThread(context.Background())
	var perr *domain.ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "CreateThread", perr.Op)
	assert.Zero(t, perr.StatusCode)
}
