package client

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skriptik666-dev/flick-messenger/internal/models"
)

func init() {
	rootCmd.AddCommand(listChatsCmd)
}

var listChatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List your chats",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := restore(commandContext(cmd))
		if err != nil {
			fmt.Println(err)
			return
		}

		st := s.Snapshot()
		if len(st.Chats) == 0 {
			fmt.Println("No chats yet. Start one with 'new-chat <friend-code>'.")
			return
		}

		cfg.LastListedChats = cfg.LastListedChats[:0]
		fmt.Printf("Chats for %s:\n", st.CurrentUser.Username)
		for i, c := range st.Chats {
			cfg.LastListedChats = append(cfg.LastListedChats, c.ID)
			fmt.Printf("%d. %s%s\n", i+1, c.Title(st.CurrentUserID()), unreadBadge(c))
			if c.LastMessage != nil {
				fmt.Printf("   %s  %s\n", c.LastMessage.CreatedAt.Local().Format(time.Kitchen), preview(*c.LastMessage))
			}
		}
		if err := SaveConfigGlobal(); err != nil {
			fmt.Printf("Warning: Failed to save chat list: %v\n", err)
		}
	},
}

func unreadBadge(c models.Chat) string {
	if c.UnreadCount == 0 {
		return ""
	}
	return fmt.Sprintf(" (%d unread)", c.UnreadCount)
}

func preview(m models.Message) string {
	if m.Content != "" {
		return m.Content
	}
	if len(m.Attachments) > 0 {
		return fmt.Sprintf("[%s] %s", m.Attachments[0].Kind, m.Attachments[0].Name)
	}
	return "[" + string(m.Type) + "]"
}
