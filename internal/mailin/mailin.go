// Package mailin extracts PDF invoices from inbound mail.
package mailin

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhillyerd/enmime"
)

const (
	pdfType       = "application/pdf"
	forwardedType = "message/rfc822"
)

// ErrNoPDF reports a message without any PDF part.
var ErrNoPDF = errors.New("message has no pdf attachment")

// Attachment is a decoded PDF part.
type Attachment struct {
	Name    string
	Content []byte
}

// Message is a parsed inbound mail plus its raw bytes for archiving.
type Message struct {
	Subject string
	From    string
	Raw     []byte
	PDFs    []Attachment
}

// Read parses a MIME message and collects its PDF parts in message order. Forwarded
// messages (message/rfc822 parts) are searched too.
func Read(r io.Reader) (*Message, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	msg := &Message{
		Subject: env.GetHeader("Subject"),
		From:    env.GetHeader("From"),
		Raw:     raw,
	}
	if err := collectPDFs(env.Root, &msg.PDFs); err != nil {
		return nil, err
	}
	return msg, nil
}

func collectPDFs(root *enmime.Part, pdfs *[]Attachment) error {
	if root == nil {
		return nil
	}
	parts := root.DepthMatchAll(func(p *enmime.Part) bool {
		return strings.EqualFold(p.ContentType, pdfType) || strings.EqualFold(p.ContentType, forwardedType)
	})
	for _, p := range parts {
		if strings.EqualFold(p.ContentType, forwardedType) {
			inner, err := enmime.ReadEnvelope(bytes.NewReader(p.Content))
			if err != nil {
				return fmt.Errorf("failed to parse forwarded message: %w", err)
			}
			if err := collectPDFs(inner.Root, pdfs); err != nil {
				return err
			}
			continue
		}
		name := p.FileName
		if name == "" {
			name = fmt.Sprintf("attachment-%d.pdf", len(*pdfs)+1)
		}
		*pdfs = append(*pdfs, Attachment{Name: name, Content: p.Content})
	}
	return nil
}

// Archive writes the raw message to dir as a uniquely named .eml file and returns
// its path.
func Archive(dir string, raw []byte, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create archive dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.eml", now.UTC().Format("20060102T150405Z"), uuid.NewString()[:8])
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, raw, 0o640); err != nil {
		return "", fmt.Errorf("failed to archive message: %w", err)
	}
	return path, nil
}
