package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMattermost_Send(t *testing.T) {
	var (
		got   Message
		calls int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewMattermost("").Send(context.Background(), srv.URL, "#### [hi](https://example.com)")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "#### [hi](https://example.com)", got.Text)
	assert.Equal(t, "RSS_BOT", got.Username)
}

func TestMattermost_SendCustomUsername(t *testing.T) {
	var got Message
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	require.NoError(t, NewMattermost("news").Send(context.Background(), srv.URL, "x"))
	assert.Equal(t, "news", got.Username)
}

func TestMattermost_SendNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewMattermost("").Send(context.Background(), srv.URL, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook status 400")
}

func TestMattermost_SendTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := NewMattermost("").Send(context.Background(), url, "x")
	assert.Error(t, err)
}

func TestMattermost_SendBadURL(t *testing.T) {
	err := NewMattermost("").Send(context.Background(), "://bad", "x")
	assert.Error(t, err)
}
