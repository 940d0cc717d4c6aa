package bloxs

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// uploadPath is the virtual folder Bloxs files new uploads under until an invoice claims them.
const uploadPath = "$$Upload"

// UploadFile reads path from disk and uploads it under its base name.
func (c *Client) UploadFile(ctx context.Context, path string) (ID, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read attachment %s: %w", path, err)
	}
	return c.Upload(ctx, filepath.Base(path), content)
}

// Upload stores content as a new file and returns the file ID Bloxs assigned.
func (c *Client) Upload(ctx context.Context, name string, content []byte) (ID, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("fileId", "null"); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := w.WriteField("path", uploadPath); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}

	contentType := mimetype.Detect(content).String()
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(name)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload form: %w", err)
	}

	var resp struct {
		Data ID `json:"data"`
	}
	if err := c.post(ctx, KindUpload, endpointUpload, w.FormDataContentType(), &buf, &resp); err != nil {
		return "", err
	}
	c.log.Info("uploaded attachment",
		zap.String("file", name),
		zap.String("content_type", contentType),
		zap.String("file_id", resp.Data.String()))
	return resp.Data, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
