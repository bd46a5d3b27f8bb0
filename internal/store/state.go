// Package store holds the client session state and the actions that change
// it. Every change goes through a Dispatcher as a Transition; remote work
// runs as Effects whose results are dispatched when they complete.
package store

import (
	"slices"

	"github.com/skriptik666-dev/flick-messenger/internal/models"
)

// State is one snapshot of the session. Snapshots are never mutated after
// they are published; transitions copy whatever they change.
type State struct {
	CurrentUser  *models.User
	Chats        []models.Chat
	Messages     map[string][]models.Message // chat id -> messages, oldest first
	ActiveChatID string
	SettingsOpen bool
}

func emptyState() State {
	return State{Chats: []models.Chat{}, Messages: map[string][]models.Message{}}
}

// Chat returns the chat with id.
func (s State) Chat(id string) (models.Chat, bool) {
	i := s.chatIndex(id)
	if i < 0 {
		return models.Chat{}, false
	}
	return s.Chats[i], true
}

// ActiveChat returns the selected chat, if any.
func (s State) ActiveChat() (models.Chat, bool) {
	if s.ActiveChatID == "" {
		return models.Chat{}, false
	}
	return s.Chat(s.ActiveChatID)
}

// CurrentUserID is the session user's id, or "" when signed out.
func (s State) CurrentUserID() string {
	if s.CurrentUser == nil {
		return ""
	}
	return s.CurrentUser.ID
}

// OtherParticipant resolves who the session user is talking to in chat.
func (s State) OtherParticipant(chat models.Chat) (models.User, bool) {
	return chat.OtherParticipant(s.CurrentUserID())
}

func (s State) chatIndex(id string) int {
	return slices.IndexFunc(s.Chats, func(c models.Chat) bool { return c.ID == id })
}

// withChats returns s with a private copy of the chat list.
func (s State) withChats() State {
	s.Chats = slices.Clone(s.Chats)
	if s.Chats == nil {
		s.Chats = []models.Chat{}
	}
	return s
}

// withMessages returns s with msgs installed for chatID. The map is copied,
// the other chats' slices are shared.
func (s State) withMessages(chatID string, msgs []models.Message) State {
	next := make(map[string][]models.Message, len(s.Messages)+1)
	for k, v := range s.Messages {
		next[k] = v
	}
	next[chatID] = msgs
	s.Messages = next
	return s
}
