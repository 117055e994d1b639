package lastfm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	token      string
	sessionErr error
}

func (f *fakeAuth) GetToken() (string, error) { return f.token, nil }

func (f *fakeAuth) GetAuthURL(token, callback string) string {
	return "https://auth.example/?token=" + token + "&cb=" + url.QueryEscape(callback)
}

func (f *fakeAuth) GetSession(token string) (string, string, error) {
	if f.sessionErr != nil {
		return "", "", f.sessionErr
	}
	return "ann", "key-" + token, nil
}

type fakeSaver struct {
	mu       sync.Mutex
	username string
	key      string
	err      error
}

func (f *fakeSaver) SaveLastfmSession(username, sessionKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.username, f.key = username, sessionKey
	return nil
}

func startTestLink(t *testing.T, auth *fakeAuth, saver *fakeSaver) *Link {
	t.Helper()
	l, err := StartLink(auth, saver, "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(l.Close)
	return l
}

func callback(t *testing.T, l *Link, token string) (int, string) {
	t.Helper()
	resp, err := http.Get(l.CallbackURL() + "?token=" + url.QueryEscape(token))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestLink_CallbackStoresSession(t *testing.T) {
	saver := &fakeSaver{}
	l := startTestLink(t, &fakeAuth{token: "tok"}, saver)
	assert.Contains(t, l.AuthURL(), url.QueryEscape(l.CallbackURL()))

	status, body := callback(t, l, "tok")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Nebula now scrobbles as ann")

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()
	username, err := l.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ann", username)
	assert.Equal(t, "key-tok", saver.key)

	status, _ = callback(t, l, "tok")
	assert.Equal(t, http.StatusConflict, status)
}

func TestLink_ForeignTokenKeepsWaiting(t *testing.T) {
	saver := &fakeSaver{}
	l := startTestLink(t, &fakeAuth{token: "tok"}, saver)

	status, body := callback(t, l, "other")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body, ErrTokenMismatch.Error())

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	_, err := l.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, saver.key)

	status, _ = callback(t, l, "tok")
	assert.Equal(t, http.StatusOK, status)
}

func TestLink_FailuresReachBrowserAndCaller(t *testing.T) {
	tests := []struct {
		name  string
		auth  *fakeAuth
		saver *fakeSaver
		want  string
	}{
		{"session exchange", &fakeAuth{token: "tok", sessionErr: errors.New("token not authorized")}, &fakeSaver{}, "token not authorized"},
		{"store", &fakeAuth{token: "tok"}, &fakeSaver{err: errors.New("disk full")}, "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := startTestLink(t, tt.auth, tt.saver)

			status, body := callback(t, l, "tok")
			assert.Equal(t, http.StatusBadGateway, status)
			assert.Contains(t, body, tt.want)

			ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
			defer cancel()
			_, err := l.Wait(ctx)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
