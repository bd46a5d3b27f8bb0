package mapper

import "github.com/skriptik666-dev/flick-messenger/internal/models"

// Chat maps a chat payload. Participants come from the membership list,
// where each membership wraps a user.
func Chat(p Payload) models.Chat {
	p = p.Unwrap()

	c := models.Chat{
		ID:           p.String("id", "_id", "chatId", "chat_id"),
		Name:         p.String("name", "title"),
		IsGroup:      p.Bool("isGroup", "is_group", "group"),
		Typing:       p.Strings("typing", "typingUsers", "typing_users"),
		Participants: []models.User{},
	}
	if n, ok := p.Int("unreadCount", "unread_count", "unread"); ok && n > 0 {
		c.UnreadCount = int(n)
	}

	if members, ok := p.List("members", "memberships", "chatMembers", "chat_members"); ok {
		for _, raw := range members {
			mp, ok := AsPayload(raw)
			if !ok {
				continue
			}
			if up, ok := mp.Object("user", "member"); ok {
				c.Participants = append(c.Participants, User(up))
			}
		}
	} else if users, ok := p.List("participants", "users"); ok {
		for _, raw := range users {
			if up, ok := AsPayload(raw); ok {
				c.Participants = append(c.Participants, User(up))
			}
		}
	}

	if lp, ok := p.Object("lastMessage", "last_message"); ok {
		m := Message(lp)
		if m.ChatID == "" {
			m.ChatID = c.ID
		}
		c.LastMessage = &m
	} else if msgs, ok := p.List("messages"); ok && len(msgs) > 0 {
		if lp, ok := AsPayload(msgs[len(msgs)-1]); ok {
			m := Message(lp)
			if m.ChatID == "" {
				m.ChatID = c.ID
			}
			c.LastMessage = &m
		}
	}
	return c
}
