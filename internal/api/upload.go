package api

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/skriptik666-dev/flick-messenger/internal/mapper"
	"github.com/skriptik666-dev/flick-messenger/internal/models"
	"github.com/skriptik666-dev/flick-messenger/internal/storage"
)

// UploadFile stores a file and returns its URL. It never fails: without
// configured storage, or when the upload is rejected, a placeholder URL
// chosen by content type is returned so composing a message is never
// blocked by an attachment.
func (c *Client) UploadFile(ctx context.Context, up models.Upload) string {
	if up.Body != nil && up.ContentType == "" {
		body, contentType, err := storage.Sniff(up.Body, "")
		if err == nil {
			up.Body, up.ContentType = body, contentType
		}
	}

	if c.objects == nil || up.Body == nil {
		timer := time.NewTimer(c.uploadFallbackDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
		c.logger.Info("storage not configured, using fallback URL", "name", up.Name)
		return storage.FallbackURL(up.ContentType, up.Name)
	}

	url, err := c.objects.Save(ctx, up)
	if err != nil {
		c.logger.Warn("upload failed, using fallback URL", "name", up.Name, "error", err)
		return storage.FallbackURL(up.ContentType, up.Name)
	}
	return url
}

// Attach uploads a file and describes it as a message attachment.
func (c *Client) Attach(ctx context.Context, up models.Upload) models.Attachment {
	var counter *countingReader
	if up.Body != nil {
		body, contentType, err := storage.Sniff(up.Body, up.ContentType)
		if err == nil {
			up.Body, up.ContentType = body, contentType
		}
		counter = &countingReader{r: up.Body}
		up.Body = counter
	}

	url := c.UploadFile(ctx, up)

	size := up.Size
	if size == 0 && counter != nil {
		// Fallback URLs leave the body unread.
		_, _ = io.Copy(io.Discard, counter)
		size = counter.n
	}
	return models.Attachment{
		ID:       uuid.NewString(),
		Kind:     mapper.KindFromMIME(up.ContentType),
		URL:      url,
		Name:     up.Name,
		Size:     size,
		MimeType: up.ContentType,
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
