package notifier_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bagtools/bagfetch/internal/notifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotifier_Notify(t *testing.T) {
	var payload map[string]string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	n := &notifier.WebhookNotifier{WebhookURL: ts.URL}

	err := n.Notify("package 100 retrieved: 5 items, 0 failed")
	require.NoError(t, err)
	assert.Equal(t, "package 100 retrieved: 5 items, 0 failed", payload["content"])
}

func TestWebhookNotifier_Errors(t *testing.T) {
	t.Run("missing url", func(t *testing.T) {
		n := &notifier.WebhookNotifier{}
		assert.Error(t, n.Notify("hello"))
	})

	t.Run("server error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		n := &notifier.WebhookNotifier{WebhookURL: ts.URL}
		assert.Error(t, n.Notify("hello"))
	})
}
