package client

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skriptik666-dev/flick-messenger/internal/mapper"
	"github.com/skriptik666-dev/flick-messenger/internal/models"
)

func init() {
	rootCmd.AddCommand(newChatCmd)
}

var newChatCmd = &cobra.Command{
	Use:   "new-chat <friend-code> [message...]",
	Short: "Start a chat with the owner of a friend code",
	Long: `Start a chat with the owner of a friend code, optionally sending a first message.

Chats with the built-in demo contacts (12345, 54321, 11111) only live for
the duration of the command, so send your first message along with it.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext(cmd)
		code := args[0]
		if !mapper.ValidFriendCode(code) {
			fmt.Println("A friend code is exactly 5 digits.")
			return
		}

		s, err := restore(ctx)
		if err != nil {
			fmt.Println(err)
			return
		}

		chat, ok := s.CreateChat(ctx, code)
		if !ok {
			fmt.Printf("Could not start a chat with %s. Check the friend code and try again.\n", code)
			return
		}
		st := s.Snapshot()
		fmt.Printf("Chat with %s started (%s).\n", chat.Title(st.CurrentUserID()), chat.ID)
		if chat.LocalOnly {
			fmt.Println("This is a demo chat and is not saved on the server.")
		}

		if content := strings.Join(args[1:], " "); content != "" {
			if err := <-s.SendMessage(ctx, chat.ID, content, models.MessageText, nil); err != nil {
				fmt.Println("Message not sent:", err)
				return
			}
			printChat(s.Snapshot(), chat)
		}
	},
}
