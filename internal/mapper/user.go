package mapper

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"regexp"
	"strings"

	"github.com/skriptik666-dev/flick-messenger/internal/models"
)

// AvatarPlaceholderURL renders an initials avatar when a user has none.
const AvatarPlaceholderURL = "https://api.dicebear.com/7.x/initials/svg?seed="

var friendCodeRe = regexp.MustCompile(`^\d{5}$`)

// ValidFriendCode reports whether code is a 5-digit numeric string.
func ValidFriendCode(code string) bool {
	return friendCodeRe.MatchString(code)
}

// FriendCode derives a stable 5-digit code from seed. The same seed always
// yields the same code.
func FriendCode(seed string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return fmt.Sprintf("%05d", 10000+h.Sum32()%90000)
}

// AvatarFor returns the placeholder avatar keyed by name.
func AvatarFor(name string) string {
	return AvatarPlaceholderURL + url.QueryEscape(name)
}

// User maps a user payload. Required fields are always populated.
func User(p Payload) models.User {
	p = p.Unwrap()

	u := models.User{
		ID:         p.String("id", "_id", "userId", "user_id", "uid"),
		Email:      p.String("email", "Email"),
		Username:   p.String("username", "userName", "user_name", "name", "displayName", "display_name"),
		Avatar:     p.String("avatar", "avatarUrl", "avatar_url", "image", "photo"),
		FriendCode: p.String("friendCode", "friend_code", "friendcode", "code"),
		Bio:        p.String("bio", "about"),
		Status:     models.Status(strings.ToUpper(p.String("status", "presence"))),
	}

	if !ValidFriendCode(u.FriendCode) {
		seed := u.ID
		if seed == "" {
			seed = strings.ToLower(u.Email)
		}
		u.FriendCode = FriendCode(seed)
	}
	if u.Username == "" {
		u.Username = displayName(u)
	}
	if u.Avatar == "" {
		u.Avatar = AvatarFor(u.Username)
	}
	if !u.Status.Valid() {
		u.Status = models.StatusOffline
	}
	if ts, ok := p.Time("lastSeen", "last_seen", "lastSeenAt", "last_seen_at"); ok {
		u.LastSeen = &ts
	}
	return u
}

func displayName(u models.User) string {
	if local, _, ok := strings.Cut(u.Email, "@"); ok && local != "" {
		return local
	}
	return "user_" + u.FriendCode
}
