package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(registerCmd)
}

var registerCmd = &cobra.Command{
	Use:     "signup <email> <username> <password>",
	Aliases: []string{"register"},
	Short:   "Create an account and log in",
	Args:    cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext(cmd)
		email, username, password := args[0], args[1], args[2]

		fmt.Printf("Registering %s...\n", email)
		s := newStore(ctx)
		if err := s.Signup(ctx, email, username, password); err != nil {
			fmt.Println("Registration failed:", describeAuthError(err))
			return
		}
		printUser(*s.Snapshot().CurrentUser)
		fmt.Println("Share your friend code so others can start a chat with you.")
	},
}
