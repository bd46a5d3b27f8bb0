package client

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skriptik666-dev/flick-messenger/internal/api"
	"github.com/skriptik666-dev/flick-messenger/internal/models"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Log in to your account",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext(cmd)
		s := newStore(ctx)
		if err := s.Login(ctx, args[0], args[1]); err != nil {
			fmt.Println("Login failed:", describeAuthError(err))
			return
		}
		printUser(*s.Snapshot().CurrentUser)
		fmt.Println("Logged in successfully!")
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Run: func(cmd *cobra.Command, args []string) {
		newStore(commandContext(cmd)).Logout(commandContext(cmd))
		cfg.LastListedChats = nil
		if err := SaveConfigGlobal(); err != nil {
			fmt.Println("Error saving config:", err)
			return
		}
		fmt.Println("Logged out.")
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	Run: func(cmd *cobra.Command, args []string) {
		s, err := restore(commandContext(cmd))
		if err != nil {
			fmt.Println(err)
			return
		}
		printUser(*s.Snapshot().CurrentUser)
	},
}

// describeAuthError turns backend rejections into something a user can act on.
func describeAuthError(err error) string {
	switch api.StatusCode(err) {
	case 401:
		return "wrong email or password"
	case 409:
		return "an account with this email already exists"
	}
	var authErr *api.AuthError
	if errors.As(err, &authErr) && errors.Is(err, api.ErrNoProfile) {
		return "the server did not return a profile"
	}
	return err.Error()
}

func printUser(u models.User) {
	fmt.Printf("%s <%s>\n", u.Username, u.Email)
	fmt.Printf("  Friend code: %s\n", u.FriendCode)
	fmt.Printf("  Status:      %s\n", u.Status)
	if u.Bio != "" {
		fmt.Printf("  Bio:         %s\n", u.Bio)
	}
}
