package api

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/skriptik666-dev/flick-messenger/internal/mapper"
	"github.com/skriptik666-dev/flick-messenger/internal/models"
	"github.com/skriptik666-dev/flick-messenger/internal/transport"
)

type sendRequest struct {
	ChatID      string              `json:"chatId"`
	Content     string              `json:"content,omitempty"`
	Type        models.MessageType  `json:"type"`
	Attachments []models.Attachment `json:"attachments"`
	ReplyTo     string              `json:"replyTo,omitempty"`
}

// ListMessages returns the messages of a chat, oldest first. It never
// fails: local-only chats have no history, and on error the result is
// empty with ok false so callers can keep what they already have.
func (c *Client) ListMessages(ctx context.Context, chatID string) (msgs []models.Message, ok bool) {
	if c.IsLocal(chatID) {
		return []models.Message{}, true
	}

	endpoint := c.apiURL + transport.PathMessage + "?chatId=" + url.QueryEscape(chatID)
	data, err := c.authed(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Warn("failed to list messages", "chat_id", chatID, "error", err)
		return []models.Message{}, false
	}

	payloads := mapper.DecodeList(data, "messages")
	msgs = make([]models.Message, 0, len(payloads))
	for _, p := range payloads {
		m := mapper.Message(p)
		if m.ChatID == "" {
			m.ChatID = chatID
		}
		msgs = append(msgs, m)
	}
	slices.SortStableFunc(msgs, func(a, b models.Message) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return msgs, true
}

// SendMessage posts a message. Local-only chats get a confirmed message
// synthesized after a short simulated delay.
func (c *Client) SendMessage(ctx context.Context, chatID, content string, typ models.MessageType, attachments []models.Attachment) (models.Message, error) {
	if attachments == nil {
		attachments = []models.Attachment{}
	}
	if c.IsLocal(chatID) {
		return c.sendLocal(ctx, chatID, content, typ, attachments)
	}

	data, err := c.authed(ctx, http.MethodPost, c.apiURL+transport.PathMessage, sendRequest{
		ChatID:      chatID,
		Content:     content,
		Type:        typ,
		Attachments: attachments,
	})
	if err != nil {
		return models.Message{}, err
	}

	m := mapper.Message(mapper.Decode(data))
	if m.ChatID == "" {
		m.ChatID = chatID
	}
	if m.SenderID == models.UnknownSenderID {
		if self := c.Self(); self.ID != "" {
			m.SenderID = self.ID
		}
	}
	return m, nil
}

func (c *Client) sendLocal(ctx context.Context, chatID, content string, typ models.MessageType, attachments []models.Attachment) (models.Message, error) {
	timer := time.NewTimer(c.localSendDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return models.Message{}, ctx.Err()
	case <-timer.C:
	}

	sender := c.Self().ID
	if sender == "" {
		sender = models.UnknownSenderID
	}
	return models.Message{
		ID:          uuid.NewString(),
		ChatID:      chatID,
		SenderID:    sender,
		Content:     content,
		Type:        typ,
		Attachments: attachments,
		CreatedAt:   time.Now(),
		ReadBy:      []string{sender},
	}, nil
}
