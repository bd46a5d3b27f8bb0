package storage

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// Fallback locations used when an upload cannot reach storage.
const (
	FallbackImageURL = "https://placehold.co/600x400/png?text="
	FallbackAudioURL = "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3"
	FallbackFileURL  = "https://example.com/files/"
)

// keyTime is replaced in tests.
var keyTime = time.Now

// ObjectKey builds a collision-resistant key: unix millis, a random
// suffix and the sanitized file name.
func ObjectKey(name string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return fmt.Sprintf("%d-%s-%s", keyTime().UnixMilli(), suffix, SanitizeName(name))
}

// SanitizeName replaces every character that does not belong in a file
// name with an underscore.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "file"
	}
	return unsafeKeyChars.ReplaceAllString(name, "_")
}

// FallbackURL picks a placeholder by coarse content type.
func FallbackURL(contentType, name string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return FallbackImageURL + url.QueryEscape(SanitizeName(name))
	case strings.HasPrefix(contentType, "audio/"):
		return FallbackAudioURL
	}
	return FallbackFileURL + url.PathEscape(SanitizeName(name))
}
