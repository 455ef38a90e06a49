package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/livemind/livemind/pkg/archive"
	"github.com/livemind/livemind/pkg/cli"
	"github.com/livemind/livemind/pkg/kv"
)

var (
	servePort     int
	serveDataDir  string
	serveInMemory bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the session archive server",
	Long: `Run the session archive HTTP server.

The server stores sessions and transcript messages in a local Badger
database and exposes the /api/live endpoints the live command records to.

Example:
  livemind serve --port 8080
  livemind serve --data-dir /var/lib/livemind --port 9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		dataDir := serveDataDir
		if dataDir == "" && !serveInMemory {
			paths, err := cli.NewPaths()
			if err != nil {
				return err
			}
			if err := paths.EnsureDataDir(); err != nil {
				return err
			}
			dataDir = paths.DataDir()
		}

		store, err := kv.NewBadger(kv.BadgerOptions{Dir: dataDir, InMemory: serveInMemory})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer store.Close()

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		slog.Info("archive server starting", "port", servePort, "data_dir", dataDir, "in_memory", serveInMemory)
		return archive.Start(ctx, archive.StartOpts{
			Store: archive.NewStore(store),
			Port:  servePort,
			Out:   os.Stderr,
		})
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP listen port")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "database directory (default is ~/.livemind/data)")
	serveCmd.Flags().BoolVar(&serveInMemory, "in-memory", false, "keep all data in memory (testing only)")
}
