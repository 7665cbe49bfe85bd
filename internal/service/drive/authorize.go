package drive

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// authorizationTimeout bounds how long the local callback server waits
// for the user to finish the consent screen.
const authorizationTimeout = 5 * time.Minute

type callbackResult struct {
	code string
	err  error
}

// authorizeInteractively runs the installed-app OAuth handshake: it
// opens a loopback listener, prints the consent URL, waits for the
// provider redirect, and exchanges the authorization code.
func authorizeInteractively(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("start callback listener: %w", err)
	}

	port := listener.Addr().(*net.TCPAddr).Port
	flowCfg := *cfg
	flowCfg.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d/oauth-callback", port)

	state := newStateToken()
	results := make(chan callbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth-callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			results <- callbackResult{err: fmt.Errorf("invalid state token")}
			http.Error(w, "Invalid state token", http.StatusBadRequest)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			results <- callbackResult{err: fmt.Errorf("callback missing authorization code")}
			http.Error(w, "Missing authorization code", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>Authorization complete. You can close this window.</body></html>")
		results <- callbackResult{code: code}
	})

	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("[drive] callback server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := flowCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	log.Printf("[drive] open the following URL to authorize Drive access:\n%s", authURL)

	select {
	case result := <-results:
		if result.err != nil {
			return nil, result.err
		}
		tok, err := flowCfg.Exchange(ctx, result.code)
		if err != nil {
			return nil, fmt.Errorf("exchange authorization code: %w", err)
		}
		return tok, nil
	case <-time.After(authorizationTimeout):
		return nil, fmt.Errorf("authorization timed out after %v", authorizationTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newStateToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
