package client

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skriptik666-dev/flick-messenger/internal/config"
	"github.com/skriptik666-dev/flick-messenger/internal/models"
	"github.com/skriptik666-dev/flick-messenger/internal/storage"
)

func init() {
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(storageCmd)
	storageCmd.AddCommand(storageSetCmd)
	storageCmd.AddCommand(storageShowCmd)
	storageCmd.AddCommand(storageClearCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update your profile",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext(cmd)
		s, err := restore(ctx)
		if err != nil {
			fmt.Println(err)
			return
		}

		var patch models.UserPatch
		if cmd.Flags().Changed("username") {
			v, _ := cmd.Flags().GetString("username")
			patch.Username = &v
		}
		if cmd.Flags().Changed("avatar") {
			v, _ := cmd.Flags().GetString("avatar")
			patch.Avatar = &v
		}
		if cmd.Flags().Changed("bio") {
			v, _ := cmd.Flags().GetString("bio")
			patch.Bio = &v
		}
		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			status := models.Status(strings.ToUpper(v))
			if !status.Valid() {
				fmt.Println("Status must be one of online, offline, away, busy.")
				return
			}
			patch.Status = &status
		}

		if !patch.Empty() {
			if err := s.UpdateProfile(ctx, patch); err != nil {
				fmt.Println("Profile not saved:", err)
				return
			}
			fmt.Println("Profile saved.")
		}
		printUser(*s.Snapshot().CurrentUser)
	},
}

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark]",
	Short:     "Show or set the color theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{ThemeLight, ThemeDark},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println(cfg.Theme)
			return
		}
		if args[0] != ThemeLight && args[0] != ThemeDark {
			fmt.Println("Theme must be light or dark.")
			return
		}
		cfg.Theme = args[0]
		if err := SaveConfigGlobal(); err != nil {
			fmt.Println("Error saving config:", err)
			return
		}
		fmt.Printf("Theme set to %s\n", cfg.Theme)
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			fmt.Println(cfgFile)
			return
		}
		path, err := GetConfigPath()
		if err != nil {
			fmt.Println("Error getting config path:", err)
			return
		}
		fmt.Println(path)
	},
}

var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Manage the object storage used for attachments",
}

var storageSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Override storage settings",
	Run: func(cmd *cobra.Command, args []string) {
		flags := map[string]*string{
			"endpoint":        &cfg.Storage.Endpoint,
			"bucket":          &cfg.Storage.Bucket,
			"region":          &cfg.Storage.Region,
			"access-key":      &cfg.Storage.AccessKeyID,
			"secret-key":      &cfg.Storage.SecretAccessKey,
			"public-base-url": &cfg.Storage.PublicBaseURL,
		}
		for name, field := range flags {
			if cmd.Flags().Changed(name) {
				*field, _ = cmd.Flags().GetString(name)
			}
		}
		if err := SaveConfigGlobal(); err != nil {
			fmt.Println("Error saving config:", err)
			return
		}
		printStorage()
	},
}

var storageShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the storage settings in effect",
	Run: func(cmd *cobra.Command, args []string) {
		printStorage()
	},
}

var storageClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the saved storage override",
	Run: func(cmd *cobra.Command, args []string) {
		cfg.Storage = config.StorageConfig{}
		if err := SaveConfigGlobal(); err != nil {
			fmt.Println("Error saving config:", err)
			return
		}
		printStorage()
	},
}

func printStorage() {
	sc := storageConfig()
	fmt.Printf("Endpoint: %s\n", sc.Endpoint)
	fmt.Printf("Bucket:   %s\n", sc.Bucket)
	fmt.Printf("Region:   %s\n", sc.Region)
	if storage.Configured(sc) {
		fmt.Printf("Uploads go to %s\n", storage.PublicBaseURL(sc))
	} else {
		fmt.Println("Storage is not configured, attachments use placeholder URLs.")
	}
}

func init() {
	profileCmd.Flags().String("username", "", "New display name")
	profileCmd.Flags().String("avatar", "", "Avatar URL")
	profileCmd.Flags().String("bio", "", "Short bio")
	profileCmd.Flags().String("status", "", "online, offline, away or busy")

	storageSetCmd.Flags().String("endpoint", "", "S3-compatible endpoint URL")
	storageSetCmd.Flags().String("bucket", "", "Bucket name")
	storageSetCmd.Flags().String("region", "", "Region")
	storageSetCmd.Flags().String("access-key", "", "Access key id")
	storageSetCmd.Flags().String("secret-key", "", "Secret access key")
	storageSetCmd.Flags().String("public-base-url", "", "Public URL objects are served from")
}
