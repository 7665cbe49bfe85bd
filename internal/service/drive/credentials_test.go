package drive

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

const testClientSecret = `{
  "installed": {
    "client_id": "test-client.apps.googleusercontent.com",
    "client_secret": "test-secret",
    "redirect_uris": ["http://localhost"],
    "auth_uri": "https://accounts.google.com/o/oauth2/auth",
    "token_uri": "https://oauth2.googleapis.com/token"
  }
}`

func newTestStore(t *testing.T) (*CredentialStore, string) {
	t.Helper()
	dir := t.TempDir()

	credsFile := filepath.Join(dir, "credentials.json")
	if err := os.WriteFile(credsFile, []byte(testClientSecret), 0600); err != nil {
		t.Fatalf("write client secret fixture: %v", err)
	}

	tokenFile := filepath.Join(dir, "token.json")
	store := NewCredentialStore(credsFile, tokenFile)
	store.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	store.authorize = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		t.Fatal("interactive authorization must not run in this test")
		return nil, nil
	}
	store.refresh = func(context.Context, *oauth2.Config, *oauth2.Token) (*oauth2.Token, error) {
		t.Fatal("refresh must not run in this test")
		return nil, nil
	}
	return store, tokenFile
}

func writeToken(t *testing.T, path string, tok *oauth2.Token) {
	t.Helper()
	raw, err := json.Marshal(tok)
	if err != nil {
		t.Fatalf("marshal token: %v", err)
	}
	if err := os.WriteFile(path, raw, 0600); err != nil {
		t.Fatalf("write token fixture: %v", err)
	}
}

func TestTokenValidCachedTokenSkipsFlows(t *testing.T) {
	store, tokenFile := newTestStore(t)
	writeToken(t, tokenFile, &oauth2.Token{
		AccessToken: "cached",
		Expiry:      time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC),
	})

	tok, err := store.Token(context.Background())
	if err != nil {
		t.Fatalf("Token err: %v", err)
	}
	if tok.AccessToken != "cached" {
		t.Fatalf("expected cached token, got %q", tok.AccessToken)
	}
}

func TestTokenExpiredWithRefreshTokenRefreshes(t *testing.T) {
	store, tokenFile := newTestStore(t)
	writeToken(t, tokenFile, &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "refresh-me",
		Expiry:       time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC),
	})

	refreshed := false
	store.refresh = func(_ context.Context, _ *oauth2.Config, tok *oauth2.Token) (*oauth2.Token, error) {
		refreshed = true
		if tok.RefreshToken != "refresh-me" {
			t.Fatalf("unexpected refresh token: %q", tok.RefreshToken)
		}
		return &oauth2.Token{
			AccessToken:  "fresh",
			RefreshToken: "refresh-me",
			Expiry:       time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC),
		}, nil
	}

	tok, err := store.Token(context.Background())
	if err != nil {
		t.Fatalf("Token err: %v", err)
	}
	if !refreshed {
		t.Fatal("expected a refresh attempt before interactive authorization")
	}
	if tok.AccessToken != "fresh" {
		t.Fatalf("expected refreshed token, got %q", tok.AccessToken)
	}

	// The refreshed token must be persisted before use.
	persisted := &oauth2.Token{}
	raw, err := os.ReadFile(store.tokenFile)
	if err != nil {
		t.Fatalf("read persisted token: %v", err)
	}
	if err := json.Unmarshal(raw, persisted); err != nil {
		t.Fatalf("decode persisted token: %v", err)
	}
	if persisted.AccessToken != "fresh" {
		t.Fatalf("refreshed token not persisted, got %q", persisted.AccessToken)
	}
}

func TestTokenAbsentFallsBackToAuthorization(t *testing.T) {
	store, _ := newTestStore(t)

	authorized := false
	store.authorize = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		authorized = true
		return &oauth2.Token{
			AccessToken: "brand-new",
			Expiry:      time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC),
		}, nil
	}

	tok, err := store.Token(context.Background())
	if err != nil {
		t.Fatalf("Token err: %v", err)
	}
	if !authorized {
		t.Fatal("expected interactive authorization for absent token")
	}
	if tok.AccessToken != "brand-new" {
		t.Fatalf("unexpected token: %q", tok.AccessToken)
	}
}

func TestTokenRefreshFailureFallsThroughToAuthorization(t *testing.T) {
	store, tokenFile := newTestStore(t)
	writeToken(t, tokenFile, &oauth2.Token{
		AccessToken:  "stale",
		RefreshToken: "revoked",
		Expiry:       time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC),
	})

	store.refresh = func(context.Context, *oauth2.Config, *oauth2.Token) (*oauth2.Token, error) {
		return nil, os.ErrPermission
	}
	store.authorize = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		return &oauth2.Token{
			AccessToken: "reauthorized",
			Expiry:      time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC),
		}, nil
	}

	tok, err := store.Token(context.Background())
	if err != nil {
		t.Fatalf("Token err: %v", err)
	}
	if tok.AccessToken != "reauthorized" {
		t.Fatalf("expected re-authorization after refresh failure, got %q", tok.AccessToken)
	}
}

func TestTokenCorruptCacheTreatedAsAbsent(t *testing.T) {
	store, tokenFile := newTestStore(t)
	if err := os.WriteFile(tokenFile, []byte("{not json"), 0600); err != nil {
		t.Fatalf("write corrupt cache: %v", err)
	}

	store.authorize = func(context.Context, *oauth2.Config) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "recovered"}, nil
	}

	tok, err := store.Token(context.Background())
	if err != nil {
		t.Fatalf("Token err: %v", err)
	}
	if tok.AccessToken != "recovered" {
		t.Fatalf("expected recovery via authorization, got %q", tok.AccessToken)
	}
}
