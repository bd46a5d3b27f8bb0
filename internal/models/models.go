package models

import (
	"io"
	"time"
)

// UnknownSenderID is used when a message payload carries no sender.
const UnknownSenderID = "unknown"

// Status is a user's presence.
type Status string

const (
	StatusOnline  Status = "ONLINE"
	StatusOffline Status = "OFFLINE"
	StatusAway    Status = "AWAY"
	StatusBusy    Status = "BUSY"
)

// Valid reports whether s is one of the known presence values.
func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusOffline, StatusAway, StatusBusy:
		return true
	}
	return false
}

// MessageType classifies message content.
type MessageType string

const (
	MessageText   MessageType = "TEXT"
	MessageImage  MessageType = "IMAGE"
	MessageVideo  MessageType = "VIDEO"
	MessageVoice  MessageType = "VOICE"
	MessageFile   MessageType = "FILE"
	MessageSystem MessageType = "SYSTEM"
)

// Valid reports whether t is a known message type.
func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageVideo, MessageVoice, MessageFile, MessageSystem:
		return true
	}
	return false
}

// AttachmentKind is the media kind of an uploaded file.
type AttachmentKind string

const (
	KindImage AttachmentKind = "image"
	KindVideo AttachmentKind = "video"
	KindFile  AttachmentKind = "file"
	KindAudio AttachmentKind = "audio"
)

// User represents a user in the system.
type User struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Avatar     string     `json:"avatar"`
	FriendCode string     `json:"friendCode"` // 5-digit invite token
	Status     Status     `json:"status"`
	Bio        string     `json:"bio,omitempty"`
	LastSeen   *time.Time `json:"lastSeen,omitempty"`
}

// UserPatch holds the profile fields a user may change. Nil fields are left alone.
type UserPatch struct {
	Username *string `json:"username,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Status   *Status `json:"status,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Username == nil && p.Avatar == nil && p.Bio == nil && p.Status == nil
}

// Apply returns a copy of u with the patch merged in.
func (p UserPatch) Apply(u User) User {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	return u
}

// Attachment is a file stored in object storage and referenced by a message.
type Attachment struct {
	ID       string         `json:"id"`
	Kind     AttachmentKind `json:"type"`
	URL      string         `json:"url"`
	Name     string         `json:"name"`
	Size     int64          `json:"size"`
	MimeType string         `json:"mimeType"`
}

// Message is a single chat message.
type Message struct {
	ID          string       `json:"id"`
	ChatID      string       `json:"chatId"`
	SenderID    string       `json:"senderId"`
	Content     string       `json:"content,omitempty"`
	Type        MessageType  `json:"type"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"createdAt"`
	ReadBy      []string     `json:"readBy,omitempty"`
	ReplyTo     string       `json:"replyTo,omitempty"`

	// Client-side only.
	LocalID string `json:"-"`
	Pending bool   `json:"-"`
}

// Chat is a conversation between two or more users.
type Chat struct {
	ID           string   `json:"id"`
	Name         string   `json:"name,omitempty"`
	Participants []User   `json:"participants"`
	LastMessage  *Message `json:"lastMessage,omitempty"`
	UnreadCount  int      `json:"unreadCount"`
	IsGroup      bool     `json:"isGroup"`
	Typing       []string `json:"typing,omitempty"`

	// LocalOnly chats were never persisted by the server.
	LocalOnly bool `json:"-"`
}

// OtherParticipant returns the participant whose id differs from
// currentUserID. With no current user it falls back to the first participant.
func (c Chat) OtherParticipant(currentUserID string) (User, bool) {
	if len(c.Participants) == 0 {
		return User{}, false
	}
	if currentUserID == "" {
		return c.Participants[0], true
	}
	for _, p := range c.Participants {
		if p.ID != currentUserID {
			return p, true
		}
	}
	return c.Participants[0], true
}

// Title is the name shown for the chat from currentUserID's point of view.
func (c Chat) Title(currentUserID string) string {
	if c.Name != "" {
		return c.Name
	}
	if other, ok := c.OtherParticipant(currentUserID); ok {
		return other.Username
	}
	return c.ID
}

// Session is an authenticated user plus the bearer token that proves it.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Upload is a file on its way to object storage.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}
