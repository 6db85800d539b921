package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotifier_Notify(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL)
	err := n.Notify(context.Background(), "analysis finished")
	require.NoError(t, err)
	assert.Contains(t, gotBody, "analysis finished")
}

func TestWebhookNotifier_NotifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.URL)
	err := n.Notify(context.Background(), "boom")
	assert.Error(t, err)
}

func TestWebhookNotifier_MissingURL(t *testing.T) {
	n := NewWebhookNotifier("")
	err := n.Notify(context.Background(), "hello")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}
