package mapper

import (
	"strings"
	"time"

	"github.com/skriptik666-dev/flick-messenger/internal/models"
)

// now is replaced in tests.
var now = time.Now

// Message maps a message payload. An invalid creation time becomes now.
func Message(p Payload) models.Message {
	p = p.Unwrap()

	m := models.Message{
		ID:       p.String("id", "_id", "messageId", "message_id"),
		ChatID:   p.String("chatId", "chat_id", "conversationId", "conversation_id"),
		SenderID: p.String("senderId", "sender_id", "userId", "user_id", "authorId"),
		Content:  p.String("content", "text", "body"),
		Type:     models.MessageType(strings.ToUpper(p.String("type", "messageType", "message_type"))),
		ReplyTo:  p.String("replyTo", "reply_to", "replyToId", "reply_to_id"),
		ReadBy:   p.Strings("readBy", "read_by"),
	}
	if m.SenderID == "" {
		if sender, ok := p.Object("sender", "user", "author"); ok {
			m.SenderID = sender.String("id", "_id")
		}
	}
	if m.SenderID == "" {
		m.SenderID = models.UnknownSenderID
	}
	if !m.Type.Valid() {
		m.Type = models.MessageText
	}

	if ts, ok := p.Time("createdAt", "created_at", "timestamp", "sentAt", "sent_at"); ok {
		m.CreatedAt = ts
	} else {
		m.CreatedAt = now()
	}

	m.Attachments = []models.Attachment{}
	if list, ok := p.List("attachments", "files"); ok {
		for _, raw := range list {
			if ap, ok := AsPayload(raw); ok {
				m.Attachments = append(m.Attachments, Attachment(ap))
			}
		}
	}
	return m
}

// Attachment maps an attachment payload.
func Attachment(p Payload) models.Attachment {
	a := models.Attachment{
		ID:       p.String("id", "_id"),
		URL:      p.String("url", "fileUrl", "file_url", "src"),
		Name:     p.String("name", "fileName", "file_name", "filename"),
		MimeType: p.String("mimeType", "mime_type", "contentType", "content_type"),
		Kind:     models.AttachmentKind(strings.ToLower(p.String("type", "kind"))),
	}
	a.Size, _ = p.Int("size", "fileSize", "file_size")
	switch a.Kind {
	case models.KindImage, models.KindVideo, models.KindFile, models.KindAudio:
	default:
		a.Kind = KindFromMIME(a.MimeType)
	}
	return a
}

// KindFromMIME picks the attachment kind for a MIME type.
func KindFromMIME(mime string) models.AttachmentKind {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return models.KindImage
	case strings.HasPrefix(mime, "video/"):
		return models.KindVideo
	case strings.HasPrefix(mime, "audio/"):
		return models.KindAudio
	}
	return models.KindFile
}

// MessageTypeFor picks the message type matching an attachment kind.
func MessageTypeFor(kind models.AttachmentKind) models.MessageType {
	switch kind {
	case models.KindImage:
		return models.MessageImage
	case models.KindVideo:
		return models.MessageVideo
	case models.KindAudio:
		return models.MessageVoice
	}
	return models.MessageFile
}
