package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/livemind/livemind/pkg/archive"
	"github.com/livemind/livemind/pkg/cli"
)

var sessionsUserID string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List archived sessions",
	Long: `List archived sessions for a user, newest first.

Example:
  livemind -c myctx sessions
  livemind -c myctx sessions --user alice --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, userID, err := archiveClient()
		if err != nil {
			return err
		}
		if sessionsUserID != "" {
			userID = sessionsUserID
		}
		if userID == "" {
			return fmt.Errorf("no user ID; set one in the context or pass --user")
		}

		sessions, err := client.SessionsByUser(cmd.Context(), userID)
		if err != nil {
			return err
		}

		if outputJSON {
			return outputResult(sessions)
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTARTED\tDURATION\tSTATUS\tVOICE")
		for _, s := range sessions {
			started := time.Time(s.StartedAt).Local().Format("2006-01-02 15:04:05")
			duration := "-"
			if s.DurationSeconds > 0 {
				duration = (time.Duration(s.DurationSeconds * float64(time.Second))).Round(time.Second).String()
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, started, duration, s.Status, s.VoiceName)
		}
		w.Flush()
		return nil
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session <id>",
	Short: "Show one archived session transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := archiveClient()
		if err != nil {
			return err
		}

		detail, err := client.Session(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if outputJSON {
			return outputResult(detail)
		}

		styles := cli.NewStyles(cli.DefaultTheme)
		meta := detail.Metadata
		fmt.Println(styles.StatusLine("session %s (%s, %s)", meta.ID, meta.ModelName, meta.Status))
		fmt.Println(styles.StatusLine("started %s", time.Time(meta.StartedAt).Local().Format(time.RFC1123)))
		if meta.LastError != "" {
			fmt.Println(styles.ErrorBanner(meta.LastError))
		}
		fmt.Println(styles.Rule(40))
		for _, m := range detail.Messages {
			fmt.Println(styles.TranscriptLine(string(m.Sender), m.Text))
		}
		return nil
	},
}

// archiveClient builds a client from the current context's archive URL and
// returns the context's user ID alongside it.
func archiveClient() (*archive.Client, string, error) {
	cliCtx, err := getContext()
	if err != nil {
		return nil, "", err
	}
	if cliCtx.ArchiveURL == "" {
		return nil, "", fmt.Errorf("context %q has no archive URL configured", cliCtx.Name)
	}
	return archive.NewClient(cliCtx.ArchiveURL), cliCtx.UserID, nil
}

func init() {
	sessionsCmd.Flags().StringVar(&sessionsUserID, "user", "", "user ID to list sessions for")
}
