package lastfm

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// AuthCallbackAddr is where the local callback server listens while an
// account is being linked.
const AuthCallbackAddr = "127.0.0.1:9847"

// ErrTokenMismatch is returned for a callback that does not carry the token
// of the pending link.
var ErrTokenMismatch = errors.New("authorization does not match the pending request")

// Authenticator is the part of the client used to link an account.
type Authenticator interface {
	GetToken() (string, error)
	GetAuthURL(token, callback string) string
	GetSession(token string) (username, sessionKey string, err error)
}

// SessionSaver stores a linked account.
type SessionSaver interface {
	SaveLastfmSession(username, sessionKey string) error
}

type linkResult struct {
	username string
	err      error
}

// Link is one pending account link. The browser callback exchanges the
// token for a session and stores it, so the page the user sees reports
// whether Nebula is actually linked.
type Link struct {
	auth  Authenticator
	store SessionSaver
	token string

	server   *http.Server
	listener net.Listener
	served   chan struct{}

	mu       sync.Mutex
	finished bool
	result   chan linkResult
}

// StartLink requests a token and starts the callback server on addr.
func StartLink(auth Authenticator, store SessionSaver, addr string) (*Link, error) {
	token, err := auth.GetToken()
	if err != nil {
		return nil, err
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	l := &Link{
		auth:     auth,
		store:    store,
		token:    token,
		listener: listener,
		served:   make(chan struct{}),
		result:   make(chan linkResult, 1),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", l.handleCallback)
	l.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		defer close(l.served)
		if err := l.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Msg("lastfm: callback server")
		}
	}()
	return l, nil
}

// CallbackURL is where Last.fm sends the browser back.
func (l *Link) CallbackURL() string {
	return "http://" + l.listener.Addr().String() + "/callback"
}

// AuthURL is the page the user opens to authorize Nebula.
func (l *Link) AuthURL() string {
	return l.auth.GetAuthURL(l.token, l.CallbackURL())
}

// Wait blocks until the callback has linked the account or failed.
func (l *Link) Wait(ctx context.Context) (string, error) {
	select {
	case r := <-l.result:
		return r.username, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Close stops the callback server.
func (l *Link) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = l.server.Shutdown(ctx)
	<-l.served
}

func (l *Link) handleCallback(w http.ResponseWriter, r *http.Request) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.finished {
		renderPage(w, http.StatusConflict, page{Title: "Already handled", Message: "This authorization was already processed. You can close this window."})
		return
	}
	if r.URL.Query().Get("token") != l.token {
		// Stray or forged callback; keep waiting for the real one.
		renderPage(w, http.StatusBadRequest, page{Title: "Authorization failed", Message: ErrTokenMismatch.Error()})
		return
	}

	username, sessionKey, err := l.auth.GetSession(l.token)
	if err == nil {
		err = l.store.SaveLastfmSession(username, sessionKey)
	}
	l.finished = true
	l.result <- linkResult{username: username, err: err}

	if err != nil {
		log.Warn().Err(err).Msg("lastfm: link failed")
		renderPage(w, http.StatusBadGateway, page{Title: "Authorization failed", Message: err.Error()})
		return
	}
	log.Info().Str("user", username).Msg("lastfm: account linked")
	renderPage(w, http.StatusOK, page{
		Title:   "Linked to Last.fm",
		Message: "Nebula now scrobbles as " + username + ". You can close this window.",
	})
}

type page struct {
	Title   string
	Message string
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><title>Nebula - {{.Title}}</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 50px;">
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</body>
</html>`))

func renderPage(w http.ResponseWriter, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pageTemplate.Execute(w, p)
}

// OpenBrowser opens the given URL in the default browser.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
