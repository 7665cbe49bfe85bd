package drive

import (
	"bytes"
	"context"
	"fmt"
	"log"

	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Uploader pushes files to Drive and makes them publicly viewable.
type Uploader struct {
	credentials *CredentialStore
}

// NewUploader wires the uploader to its credential store.
func NewUploader(credentials *CredentialStore) *Uploader {
	return &Uploader{credentials: credentials}
}

// Upload creates the file, grants anyone read access, and returns a
// shareable view URL. Any stage failing aborts the whole operation; a
// file left private by a failed permission step is not cleaned up.
func (u *Uploader) Upload(ctx context.Context, data []byte, filename, mimeType string) (string, error) {
	tok, err := u.credentials.Token(ctx)
	if err != nil {
		return "", err
	}

	cfg, err := u.credentials.oauthConfig()
	if err != nil {
		return "", err
	}

	svc, err := driveapi.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, tok)))
	if err != nil {
		return "", fmt.Errorf("create drive service: %w", err)
	}

	created, err := svc.Files.Create(&driveapi.File{Name: filename}).
		Media(bytes.NewReader(data), googleapi.ContentType(mimeType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("create drive file: %w", err)
	}

	_, err = svc.Permissions.Create(created.Id, &driveapi.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("share drive file %s: %w", created.Id, err)
	}

	url := fmt.Sprintf("https://drive.google.com/uc?id=%s", created.Id)
	log.Printf("[drive] uploaded %s (%d bytes) as %s", filename, len(data), created.Id)
	return url, nil
}
