package store

import (
	"slices"

	"github.com/skriptik666-dev/flick-messenger/internal/models"
)

func set(f func(State) State) Transition {
	return func(s State) (State, []Effect) { return f(s), nil }
}

// signedIn installs the session user and its chat list. Signing in as a
// different user starts from an empty state.
func signedIn(user models.User, chats []models.Chat) Transition {
	return set(func(s State) State {
		if s.CurrentUserID() != user.ID {
			s = emptyState()
		}
		u := user
		s.CurrentUser = &u
		if chats == nil {
			chats = []models.Chat{}
		}
		s.Chats = chats
		return s
	})
}

func signedOut() Transition {
	return set(func(State) State { return emptyState() })
}

// chatsLoaded replaces the chat list. Local-only chats are not known to the
// server and are kept in front.
func chatsLoaded(chats []models.Chat) Transition {
	return set(func(s State) State {
		next := make([]models.Chat, 0, len(chats)+len(s.Chats))
		for _, c := range s.Chats {
			if c.LocalOnly && !slices.ContainsFunc(chats, func(o models.Chat) bool { return o.ID == c.ID }) {
				next = append(next, c)
			}
		}
		s.Chats = append(next, chats...)
		return s
	})
}

// chatSelected makes id the active chat and clears its unread counter.
// refresh, when set, reloads the chat's messages in the background.
func chatSelected(id string, refresh Effect) Transition {
	return func(s State) (State, []Effect) {
		s.ActiveChatID = id
		if i := s.chatIndex(id); i >= 0 && s.Chats[i].UnreadCount != 0 {
			s = s.withChats()
			s.Chats[i].UnreadCount = 0
		}
		if refresh == nil || id == "" {
			return s, nil
		}
		return s, []Effect{refresh}
	}
}

// messagesLoaded installs a fetched history. Drafts still in flight stay
// at the end so their sends can reconcile.
func messagesLoaded(chatID string, msgs []models.Message) Transition {
	return set(func(s State) State {
		next := slices.Clone(msgs)
		if next == nil {
			next = []models.Message{}
		}
		for _, m := range s.Messages[chatID] {
			if m.Pending {
				next = append(next, m)
			}
		}
		return s.withMessages(chatID, next)
	})
}

// draftAdded appends a pending message and makes it the chat's last message.
func draftAdded(draft models.Message, deliver Effect) Transition {
	return func(s State) (State, []Effect) {
		msgs := append(slices.Clone(s.Messages[draft.ChatID]), draft)
		s = s.withMessages(draft.ChatID, msgs)
		if i := s.chatIndex(draft.ChatID); i >= 0 {
			s = s.withChats()
			last := draft
			s.Chats[i].LastMessage = &last
		}
		return s, []Effect{deliver}
	}
}

// draftConfirmed swaps the draft with localID for the stored message,
// keeping its position. If a refresh already brought in the stored message,
// the draft is dropped instead.
func draftConfirmed(chatID, localID string, stored models.Message) Transition {
	return set(func(s State) State {
		msgs := s.Messages[chatID]
		i := slices.IndexFunc(msgs, func(m models.Message) bool { return m.Pending && m.LocalID == localID })
		if i < 0 {
			return s
		}
		stored.Pending = false
		stored.LocalID = localID
		msgs = slices.Clone(msgs)
		if stored.ID != "" && slices.ContainsFunc(msgs, func(m models.Message) bool { return !m.Pending && m.ID == stored.ID }) {
			msgs = slices.Delete(msgs, i, i+1)
		} else {
			msgs[i] = stored
		}
		s = s.withMessages(chatID, msgs)

		if j := s.chatIndex(chatID); j >= 0 {
			if last := s.Chats[j].LastMessage; last != nil && last.LocalID == localID {
				s = s.withChats()
				confirmed := stored
				s.Chats[j].LastMessage = &confirmed
			}
		}
		return s
	})
}

// draftFailed drops the draft with localID. The chat's last message is left
// as the draft set it.
func draftFailed(chatID, localID string) Transition {
	return set(func(s State) State {
		msgs := s.Messages[chatID]
		i := slices.IndexFunc(msgs, func(m models.Message) bool { return m.Pending && m.LocalID == localID })
		if i < 0 {
			return s
		}
		return s.withMessages(chatID, slices.Delete(slices.Clone(msgs), i, i+1))
	})
}

// chatCreated puts chat first and selects it.
func chatCreated(chat models.Chat) Transition {
	return set(func(s State) State {
		rest := slices.DeleteFunc(slices.Clone(s.Chats), func(c models.Chat) bool { return c.ID == chat.ID })
		s.Chats = append([]models.Chat{chat}, rest...)
		s.ActiveChatID = chat.ID
		if _, ok := s.Messages[chat.ID]; !ok {
			s = s.withMessages(chat.ID, []models.Message{})
		}
		return s
	})
}

// userReplaced installs u as the session user. A nil u is ignored. u is
// kept as is and must not be modified afterwards.
func userReplaced(u *models.User) Transition {
	return set(func(s State) State {
		if u != nil && s.CurrentUser != nil {
			s.CurrentUser = u
		}
		return s
	})
}

// userSettled installs next only while expected is still the session user,
// so a late profile response cannot undo a newer change or a new login.
func userSettled(expected, next *models.User) Transition {
	return set(func(s State) State {
		if next != nil && s.CurrentUser == expected {
			s.CurrentUser = next
		}
		return s
	})
}

func settingsToggled(open bool) Transition {
	return set(func(s State) State {
		s.SettingsOpen = open
		return s
	})
}
