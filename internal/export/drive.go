package export

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Uploader stores a named blob and returns a reference to it. Satisfied by
// DriveUploader; tests substitute a fake.
type Uploader interface {
	Upload(ctx context.Context, filename, content string) (string, error)
}

// DriveUploader uploads files into a fixed Google Drive folder using a
// service account.
type DriveUploader struct {
	svc      *drive.Service
	folderID string
}

// NewDriveUploader builds an uploader from service-account JSON credentials.
func NewDriveUploader(ctx context.Context, credentialsJSON []byte, folderID string) (*DriveUploader, error) {
	svc, err := drive.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize drive service: %w", err)
	}
	return &DriveUploader{svc: svc, folderID: folderID}, nil
}

// Upload creates the file in the destination folder and returns its view
// link. One blocking call, no retry.
func (u *DriveUploader) Upload(ctx context.Context, filename, content string) (string, error) {
	meta := &drive.File{
		Name:    filename,
		Parents: []string{u.folderID},
	}
	f, err := u.svc.Files.Create(meta).
		Media(strings.NewReader(content), googleapi.ContentType("text/csv")).
		Fields("id", "webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("drive upload of %s: %w", filename, err)
	}
	if f.WebViewLink != "" {
		return f.WebViewLink, nil
	}
	return "https://drive.google.com/file/d/" + f.Id + "/view", nil
}
