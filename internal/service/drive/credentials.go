package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	driveapi "google.golang.org/api/drive/v3"
)

// CredentialStore walks a token through its lifecycle for every
// request: load from the cache file, validate, refresh when expired,
// and fall back to the interactive authorization flow when nothing
// usable exists. Validity is re-checked per call rather than trusted
// across requests.
type CredentialStore struct {
	credentialsFile string
	tokenFile       string

	// Injection points for tests: wall clock, refresh call, and the
	// interactive flow.
	now       func() time.Time
	refresh   func(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token) (*oauth2.Token, error)
	authorize func(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)
}

// NewCredentialStore builds a store over the client-secret descriptor
// and token cache files.
func NewCredentialStore(credentialsFile, tokenFile string) *CredentialStore {
	return &CredentialStore{
		credentialsFile: credentialsFile,
		tokenFile:       tokenFile,
		now:             time.Now,
		refresh:         refreshToken,
		authorize:       authorizeInteractively,
	}
}

// Token returns a valid OAuth token, persisting any newly obtained or
// refreshed token before handing it out.
func (s *CredentialStore) Token(ctx context.Context) (*oauth2.Token, error) {
	cfg, err := s.oauthConfig()
	if err != nil {
		return nil, err
	}

	tok, err := s.loadToken()
	if err != nil {
		// Missing or corrupt cache is the Absent state, not a failure.
		log.Printf("[drive] no cached token: %v", err)
		tok = nil
	}

	if tok != nil {
		if s.tokenValid(tok) {
			return tok, nil
		}
		if tok.RefreshToken != "" {
			refreshed, err := s.refresh(ctx, cfg, tok)
			if err == nil {
				if err := s.saveToken(refreshed); err != nil {
					return nil, err
				}
				return refreshed, nil
			}
			log.Printf("[drive] token refresh failed, re-authorizing: %v", err)
		}
	}

	fresh, err := s.authorize(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("drive authorization: %w", err)
	}
	if err := s.saveToken(fresh); err != nil {
		return nil, err
	}
	return fresh, nil
}

// tokenValid applies a small safety margin so a token about to expire
// is treated as expired.
func (s *CredentialStore) tokenValid(tok *oauth2.Token) bool {
	if tok.AccessToken == "" {
		return false
	}
	if tok.Expiry.IsZero() {
		return true
	}
	return tok.Expiry.After(s.now().Add(time.Minute))
}

func (s *CredentialStore) oauthConfig() (*oauth2.Config, error) {
	raw, err := os.ReadFile(s.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read client secret file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(raw, driveapi.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secret file: %w", err)
	}
	return cfg, nil
}

func (s *CredentialStore) loadToken() (*oauth2.Token, error) {
	f, err := os.Open(s.tokenFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decode token cache: %w", err)
	}
	return tok, nil
}

func (s *CredentialStore) saveToken(tok *oauth2.Token) error {
	f, err := os.OpenFile(s.tokenFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create token cache: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("write token cache: %w", err)
	}
	return nil
}

// refreshToken exchanges the refresh token for a fresh access token.
func refreshToken(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token) (*oauth2.Token, error) {
	refreshed, err := cfg.TokenSource(ctx, tok).Token()
	if err != nil {
		return nil, fmt.Errorf("refresh token: %w", err)
	}
	return refreshed, nil
}
