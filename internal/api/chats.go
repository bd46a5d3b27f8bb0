package api

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/google/uuid"

	"github.com/skriptik666-dev/flick-messenger/internal/mapper"
	"github.com/skriptik666-dev/flick-messenger/internal/models"
	"github.com/skriptik666-dev/flick-messenger/internal/transport"
)

// ListChats returns the user's chats followed by the local-only chats
// created by this client. It never fails: on any error only the local-only
// chats are returned and ok is false.
func (c *Client) ListChats(ctx context.Context) (chats []models.Chat, ok bool) {
	data, err := c.authed(ctx, http.MethodGet, c.apiURL+transport.PathChat, nil)
	if err != nil {
		c.logger.Warn("failed to list chats", "error", err)
		return c.appendLocalChats([]models.Chat{}), false
	}

	payloads := mapper.DecodeList(data, "chats")
	chats = make([]models.Chat, 0, len(payloads))
	for _, p := range payloads {
		chat := mapper.Chat(p)
		if chat.ID == "" {
			continue
		}
		chats = append(chats, chat)
	}
	return c.appendLocalChats(chats), true
}

func (c *Client) appendLocalChats(chats []models.Chat) []models.Chat {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.localOrder {
		if slices.ContainsFunc(chats, func(o models.Chat) bool { return o.ID == id }) {
			continue
		}
		chats = append(chats, c.localChats[id])
	}
	return chats
}

// CreateChat starts a chat with the user owning friendCode. If the server
// cannot do it, built-in demo contacts still get a local-only chat.
func (c *Client) CreateChat(ctx context.Context, friendCode string) (models.Chat, error) {
	server := strategy[models.Chat]{
		name: "server",
		run: func(ctx context.Context) (models.Chat, error) {
			data, err := c.authed(ctx, http.MethodPost, c.apiURL+transport.PathChat, map[string]string{"friendCode": friendCode})
			if err != nil {
				return models.Chat{}, err
			}
			chat := mapper.Chat(mapper.Decode(data))
			if chat.ID == "" {
				return models.Chat{}, fmt.Errorf("response has no chat id")
			}
			return chat, nil
		},
	}
	demo := strategy[models.Chat]{
		name: "demo",
		run: func(context.Context) (models.Chat, error) {
			return c.localChat(friendCode)
		},
	}

	chat, err := firstSuccess(ctx, c.logger, server, demo)
	if err != nil {
		return models.Chat{}, fmt.Errorf("create chat with %s: %w", friendCode, err)
	}
	return chat, nil
}

func (c *Client) localChat(friendCode string) (models.Chat, error) {
	contact, ok := DemoContact(friendCode)
	if !ok {
		return models.Chat{}, ErrNotDemo
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.localChats {
		for _, p := range existing.Participants {
			if p.ID == contact.ID {
				return existing, nil
			}
		}
	}

	participants := []models.User{contact}
	if c.self.ID != "" {
		participants = []models.User{c.self, contact}
	}
	chat := models.Chat{
		ID:           "local-" + uuid.NewString(),
		Participants: participants,
		LocalOnly:    true,
	}
	c.localChats[chat.ID] = chat
	c.localOrder = append(c.localOrder, chat.ID)
	c.logger.Info("created local chat", "chat_id", chat.ID, "contact", contact.Username)
	return chat, nil
}

// IsLocal reports whether chatID only exists in this process.
func (c *Client) IsLocal(chatID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.localChats[chatID]
	return ok
}
