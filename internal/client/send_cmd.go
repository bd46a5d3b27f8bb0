package client

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/skriptik666-dev/flick-messenger/internal/mapper"
	"github.com/skriptik666-dev/flick-messenger/internal/models"
	"github.com/skriptik666-dev/flick-messenger/internal/store"
)

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringArrayP("file", "f", nil, "Attach a file (repeatable)")
}

var sendCmd = &cobra.Command{
	Use:   "send <chat> [message...]",
	Short: "Send a message to a chat (id or number from 'chats')",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext(cmd)
		files, _ := cmd.Flags().GetStringArray("file")
		content := strings.Join(args[1:], " ")
		if content == "" && len(files) == 0 {
			fmt.Println("Nothing to send. Give a message or --file.")
			return
		}

		s, err := restore(ctx)
		if err != nil {
			fmt.Println(err)
			return
		}
		chatID := resolveChat(args[0])
		if _, ok := s.Snapshot().Chat(chatID); !ok {
			fmt.Printf("Unknown chat: %s\n", args[0])
			return
		}

		attachments, err := attachFiles(ctx, s, files)
		if err != nil {
			fmt.Println("Error reading file:", err)
			return
		}

		typ := models.MessageText
		if content == "" && len(attachments) > 0 {
			typ = mapper.MessageTypeFor(attachments[0].Kind)
		}

		done := s.SendMessage(ctx, chatID, content, typ, attachments)
		fmt.Println("Sending...")
		if err := <-done; err != nil {
			fmt.Println("Message not sent:", err)
			return
		}
		fmt.Println("Message sent.")
	},
}

// attachFiles uploads files concurrently, keeping their order.
func attachFiles(ctx context.Context, s *store.Store, paths []string) ([]models.Attachment, error) {
	attachments := make([]models.Attachment, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			info, err := f.Stat()
			if err != nil {
				return err
			}
			attachments[i] = s.Attach(ctx, models.Upload{
				Name: filepath.Base(path),
				Size: info.Size(),
				Body: f,
			})
			fmt.Printf("Attached %s (%s)\n", attachments[i].Name, attachments[i].Kind)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return attachments, nil
}
