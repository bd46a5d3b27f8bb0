package api

import (
	"github.com/skriptik666-dev/flick-messenger/internal/mapper"
	"github.com/skriptik666-dev/flick-messenger/internal/models"
)

// Built-in contacts that can always be reached, so the client stays usable
// against a backend that has no chat endpoint yet.
var demoContacts = map[string]models.User{
	"12345": demoUser("demo-alex", "Alex", "12345", models.StatusOnline, "Always around to chat."),
	"54321": demoUser("demo-maria", "Maria", "54321", models.StatusAway, "Back in five."),
	"11111": demoUser("demo-support", "Flick Support", "11111", models.StatusOnline, "Ask me anything about Flick."),
}

func demoUser(id, name, code string, status models.Status, bio string) models.User {
	return models.User{
		ID:         id,
		Username:   name,
		Email:      id + "@demo.flick.local",
		Avatar:     mapper.AvatarFor(name),
		FriendCode: code,
		Status:     status,
		Bio:        bio,
	}
}

// DemoContact returns the built-in contact for friendCode.
func DemoContact(friendCode string) (models.User, bool) {
	u, ok := demoContacts[friendCode]
	return u, ok
}
