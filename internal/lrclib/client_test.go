package lrclib

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/get", r.URL.Path)
		assert.Equal(t, "Artist", r.URL.Query().Get("artist_name"))
		assert.Equal(t, "Song", r.URL.Query().Get("track_name"))
		assert.Equal(t, "185", r.URL.Query().Get("duration"))
		assert.Empty(t, r.URL.Query().Get("album_name"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"trackName":"Song","syncedLyrics":"[00:01.00]hi","plainLyrics":"hi"}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).Get(t.Context(), "Artist", "Song", "", 185*time.Second)

	require.NoError(t, err)
	assert.Equal(t, "[00:01.00]hi", res.Text())
}

func TestClient_Get_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"404", http.StatusNotFound, ``},
		{"instrumental", http.StatusOK, `{"instrumental":true}`},
		{"empty", http.StatusOK, `{"id":3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).Get(t.Context(), "a", "b", "", 0)
			assert.True(t, errors.Is(err, ErrNotFound), "err = %v", err)
		})
	}
}

func TestClient_Get_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Get(t.Context(), "a", "b", "", 0)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}
