package storage

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/skriptik666-dev/flick-messenger/internal/config"
	"github.com/skriptik666-dev/flick-messenger/internal/models"
)

// MockUploader implements UploaderAPI
type MockUploader struct {
	Objects      map[string][]byte
	ContentTypes map[string]string
	Err          error
}

func (m *MockUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Objects == nil {
		m.Objects = make(map[string][]byte)
		m.ContentTypes = make(map[string]string)
	}
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(input.Body)
	m.Objects[*input.Key] = buf.Bytes()
	m.ContentTypes[*input.Key] = *input.ContentType
	return &manager.UploadOutput{Key: input.Key}, nil
}

func TestS3StoreSave(t *testing.T) {
	mock := &MockUploader{}
	store := &S3Store{Uploader: mock, Bucket: "chat-files", BaseURL: "https://cdn.example.com/chat-files"}

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	url, err := store.Save(context.Background(), models.Upload{Name: "my photo.png", Body: bytes.NewReader(png)})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(url, "https://cdn.example.com/chat-files/") {
		t.Errorf("Unexpected URL %s", url)
	}
	if !strings.HasSuffix(url, "my_photo.png") {
		t.Errorf("Expected sanitized name in URL, got %s", url)
	}

	if len(mock.Objects) != 1 {
		t.Fatalf("Expected 1 object, got %d", len(mock.Objects))
	}
	for key, content := range mock.Objects {
		if !bytes.Equal(content, png) {
			t.Error("Content not uploaded intact")
		}
		if mock.ContentTypes[key] != "image/png" {
			t.Errorf("Expected sniffed image/png, got %s", mock.ContentTypes[key])
		}
	}
}

func TestS3StoreSaveError(t *testing.T) {
	store := &S3Store{Uploader: &MockUploader{Err: errors.New("403 forbidden")}, Bucket: "b", BaseURL: "https://x/b"}
	if _, err := store.Save(context.Background(), models.Upload{Name: "a.txt", ContentType: "text/plain", Body: strings.NewReader("hi")}); err == nil {
		t.Error("Expected upload error")
	}
}

func TestNewS3StoreUnconfigured(t *testing.T) {
	_, err := NewS3Store(context.Background(), config.Default().Storage)
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestConfigured(t *testing.T) {
	cases := []struct {
		cfg  config.StorageConfig
		want bool
	}{
		{config.StorageConfig{}, false},
		{config.StorageConfig{Endpoint: "your-storage-endpoint", AccessKeyID: "real"}, false},
		{config.StorageConfig{Endpoint: "https://s3.example.com", AccessKeyID: "YOUR_SUPABASE_ANON_KEY"}, false},
		{config.StorageConfig{Endpoint: "https://s3.example.com", AccessKeyID: "AKIA123"}, true},
	}
	for _, tc := range cases {
		if got := Configured(tc.cfg); got != tc.want {
			t.Errorf("Configured(%+v) = %v, want %v", tc.cfg, got, tc.want)
		}
	}
}

func TestObjectKey(t *testing.T) {
	keyTime = func() time.Time { return time.UnixMilli(1700000000123) }
	defer func() { keyTime = time.Now }()

	key := ObjectKey("../évil name?.mp3")
	if !regexp.MustCompile(`^1700000000123-[0-9a-f]{10}-[A-Za-z0-9._-]+$`).MatchString(key) {
		t.Errorf("Unexpected key format %s", key)
	}
	if ObjectKey("a.txt") == ObjectKey("a.txt") {
		t.Error("Expected random suffix to differ")
	}
	if SanitizeName("") != "file" {
		t.Error("Expected default name for empty input")
	}
}

func TestFallbackURL(t *testing.T) {
	if got := FallbackURL("image/jpeg", "cat.jpg"); !strings.HasPrefix(got, FallbackImageURL) {
		t.Errorf("Expected image fallback, got %s", got)
	}
	if got := FallbackURL("audio/webm", "note.webm"); got != FallbackAudioURL {
		t.Errorf("Expected audio fallback, got %s", got)
	}
	if got := FallbackURL("application/pdf", "doc.pdf"); got != FallbackFileURL+"doc.pdf" {
		t.Errorf("Expected file fallback, got %s", got)
	}
}

func TestSniffKeepsDeclaredType(t *testing.T) {
	r, ct, err := Sniff(strings.NewReader("hello"), "text/markdown")
	if err != nil || ct != "text/markdown" {
		t.Fatalf("Expected declared type, got %s (%v)", ct, err)
	}
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(r)
	if buf.String() != "hello" {
		t.Errorf("Body changed: %q", buf.String())
	}
}
