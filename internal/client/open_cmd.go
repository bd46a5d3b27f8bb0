package client

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/skriptik666-dev/flick-messenger/internal/models"
	"github.com/skriptik666-dev/flick-messenger/internal/store"
)

func init() {
	rootCmd.AddCommand(openChatCmd)
}

var openChatCmd = &cobra.Command{
	Use:   "open <chat>",
	Short: "Show the messages of a chat (id or number from 'chats')",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext(cmd)
		s, err := restore(ctx)
		if err != nil {
			fmt.Println(err)
			return
		}

		chatID := resolveChat(args[0])
		s.SelectChat(ctx, chatID)
		s.Wait()

		st := s.Snapshot()
		chat, ok := st.Chat(chatID)
		if !ok {
			fmt.Printf("Unknown chat: %s\n", args[0])
			return
		}
		printChat(st, chat)
	},
}

// resolveChat maps a 1-based index from the last 'chats' listing to a chat
// id. Anything else is taken as an id.
func resolveChat(arg string) string {
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(cfg.LastListedChats) {
		return cfg.LastListedChats[n-1]
	}
	return arg
}

func printChat(st store.State, chat models.Chat) {
	fmt.Printf("== %s ==\n", chat.Title(st.CurrentUserID()))
	if other, ok := st.OtherParticipant(chat); ok && !chat.IsGroup {
		fmt.Printf("%s is %s, friend code %s\n", other.Username, other.Status, other.FriendCode)
	}

	names := make(map[string]string, len(chat.Participants))
	for _, p := range chat.Participants {
		names[p.ID] = p.Username
	}
	msgs := st.Messages[chat.ID]
	if len(msgs) == 0 {
		fmt.Println("No messages yet.")
		return
	}
	for _, m := range msgs {
		sender := names[m.SenderID]
		if m.SenderID == st.CurrentUserID() {
			sender = "you"
		} else if sender == "" {
			sender = m.SenderID
		}
		fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Local().Format(time.Kitchen), sender, preview(m))
		for _, a := range m.Attachments {
			fmt.Printf("    %s %s (%s)\n", a.Kind, a.Name, a.URL)
		}
	}
}
