package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/livemind/livemind/pkg/cli"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Contexts allow you to manage multiple API configurations,
similar to kubectl's context management.

Configuration is stored in ~/.livemind/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a new context",
	Long: `Add a new context with the specified name.

Example:
  livemind config add-context myctx --api-key YOUR_API_KEY --user-id alice
  livemind config add-context local --api-key KEY --archive-url http://localhost:8080`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		apiKey, err := cmd.Flags().GetString("api-key")
		if err != nil {
			return fmt.Errorf("failed to read 'api-key' flag: %w", err)
		}
		if apiKey == "" {
			return fmt.Errorf("--api-key is required")
		}

		archiveURL, err := cmd.Flags().GetString("archive-url")
		if err != nil {
			return fmt.Errorf("failed to read 'archive-url' flag: %w", err)
		}
		userID, err := cmd.Flags().GetString("user-id")
		if err != nil {
			return fmt.Errorf("failed to read 'user-id' flag: %w", err)
		}
		voiceName, err := cmd.Flags().GetString("voice")
		if err != nil {
			return fmt.Errorf("failed to read 'voice' flag: %w", err)
		}
		micDevice, err := cmd.Flags().GetString("mic-device")
		if err != nil {
			return fmt.Errorf("failed to read 'mic-device' flag: %w", err)
		}
		cameraDevice, err := cmd.Flags().GetString("camera-device")
		if err != nil {
			return fmt.Errorf("failed to read 'camera-device' flag: %w", err)
		}

		ctx := &cli.Context{
			APIKey:       apiKey,
			ArchiveURL:   archiveURL,
			UserID:       userID,
			VoiceName:    voiceName,
			MicDevice:    micDevice,
			CameraDevice: cameraDevice,
		}

		cfg := getConfig()
		if err := cfg.AddContext(name, ctx); err != nil {
			return err
		}

		cli.PrintSuccess("Context %q added successfully", name)
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg := getConfig()
		if err := cfg.DeleteContext(name); err != nil {
			return err
		}

		cli.PrintSuccess("Context %q deleted", name)
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		cfg := getConfig()
		if err := cfg.UseContext(name); err != nil {
			return err
		}

		cli.PrintSuccess("Switched to context %q", name)
		return nil
	},
}

var configGetContextCmd = &cobra.Command{
	Use:   "get-context",
	Short: "Display the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		if cfg.CurrentContext == "" {
			fmt.Println("No current context set")
			return nil
		}

		fmt.Println(cfg.CurrentContext)
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:     "list-contexts",
	Aliases: []string{"get-contexts"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		if len(cfg.Contexts) == 0 {
			fmt.Println("No contexts configured")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tUSER_ID\tARCHIVE_URL")

		for name, ctx := range cfg.Contexts {
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			archiveURL := ctx.ArchiveURL
			if archiveURL == "" {
				archiveURL = "(none)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", current, name, ctx.UserID, archiveURL)
		}

		w.Flush()
		return nil
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		fmt.Printf("Config file: %s\n", cfg.Path())
		fmt.Printf("Current context: %s\n", cfg.CurrentContext)
		fmt.Printf("Contexts: %d\n", len(cfg.Contexts))

		if len(cfg.Contexts) > 0 {
			fmt.Println("\nContext details:")
			for name, ctx := range cfg.Contexts {
				fmt.Printf("\n  %s:\n", name)
				fmt.Printf("    API Key: %s\n", cli.MaskAPIKey(ctx.APIKey))
				if ctx.ArchiveURL != "" {
					fmt.Printf("    Archive URL: %s\n", ctx.ArchiveURL)
				}
				if ctx.UserID != "" {
					fmt.Printf("    User ID: %s\n", ctx.UserID)
				}
				if ctx.VoiceName != "" {
					fmt.Printf("    Voice: %s\n", ctx.VoiceName)
				}
				if ctx.MicDevice != "" {
					fmt.Printf("    Mic Device: %s\n", ctx.MicDevice)
				}
				if ctx.CameraDevice != "" {
					fmt.Printf("    Camera Device: %s\n", ctx.CameraDevice)
				}
			}
		}

		return nil
	},
}

func init() {
	// add-context flags
	configAddContextCmd.Flags().String("api-key", "", "API key (required)")
	configAddContextCmd.Flags().String("archive-url", "", "Archive server base URL")
	configAddContextCmd.Flags().String("user-id", "", "User ID recorded with archived sessions")
	configAddContextCmd.Flags().String("voice", "", "Default voice name")
	configAddContextCmd.Flags().String("mic-device", "", "Microphone capture device override")
	configAddContextCmd.Flags().String("camera-device", "", "Camera capture device override")

	// Add subcommands
	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configGetContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configViewCmd)
}
