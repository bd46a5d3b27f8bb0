// Package apitest is an in-memory stand-in for the auth and data backends,
// used by tests across the module.
package apitest

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// User is a backend account.
type User struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Username   string     `json:"user_name"`
	Password   string     `json:"-"`
	FriendCode string     `json:"friend_code"`
	AvatarURL  string     `json:"avatar_url,omitempty"`
	Bio        string     `json:"bio,omitempty"`
	Status     string     `json:"status"`
	LastSeen   *time.Time `json:"last_seen,omitempty"`
}

// Message is a stored message.
type Message struct {
	ID          string           `json:"id"`
	ChatID      string           `json:"chat_id"`
	SenderID    string           `json:"sender_id"`
	Content     string           `json:"content,omitempty"`
	Type        string           `json:"type"`
	Attachments []map[string]any `json:"attachments"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Chat is a stored chat with its member ids.
type Chat struct {
	ID      string
	Name    string
	IsGroup bool
	Members []string
}

// Storage holds users, sessions, chats and messages.
type Storage struct {
	mu       sync.RWMutex
	Users    map[string]User      // id -> user
	Sessions map[string]string    // token -> user id
	Chats    map[string]Chat      // id -> chat
	Messages map[string][]Message // chat id -> messages
	order    []string             // chat ids, oldest first
}

// NewStorage creates an empty Storage.
func NewStorage() *Storage {
	return &Storage{
		Users:    make(map[string]User),
		Sessions: make(map[string]string),
		Chats:    make(map[string]Chat),
		Messages: make(map[string][]Message),
	}
}

// AddUser adds or updates a user.
func (s *Storage) AddUser(u User) User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Status == "" {
		u.Status = "online"
	}
	s.Users[u.ID] = u
	return u
}

// GetUser retrieves a user by id.
func (s *Storage) GetUser(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.Users[id]
	return u, ok
}

// FindByEmail retrieves a user by email.
func (s *Storage) FindByEmail(email string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.Users {
		if u.Email == email {
			return u, true
		}
	}
	return User{}, false
}

// FindByFriendCode retrieves a user by friend code.
func (s *Storage) FindByFriendCode(code string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.Users {
		if u.FriendCode == code {
			return u, true
		}
	}
	return User{}, false
}

// CreateSession issues a token for userID.
func (s *Storage) CreateSession(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token := uuid.NewString()
	s.Sessions[token] = userID
	return token
}

// GetSession resolves a token to a user id.
func (s *Storage) GetSession(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.Sessions[token]
	return id, ok
}

// CreateChat stores a chat between members.
func (s *Storage) CreateChat(members ...string) Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := Chat{ID: uuid.NewString(), Members: members, IsGroup: len(members) > 2}
	s.Chats[c.ID] = c
	s.order = append(s.order, c.ID)
	return c
}

// HasChat reports whether chatID exists.
func (s *Storage) HasChat(chatID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.Chats[chatID]
	return ok
}

// ChatsFor lists the chats userID belongs to, newest first.
func (s *Storage) ChatsFor(userID string) []Chat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Chat
	for i := len(s.order) - 1; i >= 0; i-- {
		c := s.Chats[s.order[i]]
		for _, m := range c.Members {
			if m == userID {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// AddMessage stores a message and assigns its id and timestamp.
func (s *Storage) AddMessage(m Message) (Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Chats[m.ChatID]; !ok {
		return Message{}, fmt.Errorf("chat not found")
	}
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now().UTC()
	if m.Attachments == nil {
		m.Attachments = []map[string]any{}
	}
	s.Messages[m.ChatID] = append(s.Messages[m.ChatID], m)
	return m, nil
}

// ListMessages returns a copy of a chat's messages.
func (s *Storage) ListMessages(chatID string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message(nil), s.Messages[chatID]...)
}
