package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/conneroisu/hopehaven/internal/config"
	"github.com/conneroisu/hopehaven/internal/content"
	"github.com/conneroisu/hopehaven/internal/logging"
	"github.com/conneroisu/hopehaven/internal/server"
	"github.com/conneroisu/hopehaven/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the web server",
	Long: `Start the web server. Every browser tab with motion allowed opens a live
session over /ws that streams particle frames and carousel changes. When
content.path is set and content.watch is on, edits to the content file are
reloaded and open tabs refresh.

Examples:
  hopehaven serve
  hopehaven serve --port 3000 --content content.yml
  HOPEHAVEN_ANIMATION_REDUCED_MOTION=true hopehaven serve`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), serveFlagKeys)
	},
	RunE: runServe,
}

var serveFlagKeys = map[string]string{
	"port":           "server.port",
	"host":           "server.host",
	"static":         "server.static_dir",
	"content":        "content.path",
	"watch":          "content.watch",
	"reduced-motion": "animation.reduced_motion",
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "Port to serve on")
	serveCmd.Flags().String("host", "localhost", "Host to bind to")
	serveCmd.Flags().StringP("content", "c", "", "Content YAML file (default: built-in content)")
	serveCmd.Flags().String("static", "static", "Directory served under /static/")
	serveCmd.Flags().Bool("watch", true, "Reload the content file when it changes")
	serveCmd.Flags().Bool("reduced-motion", false, "Serve a static hero frame and no live sessions")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	store, err := content.NewStore(cfg.Content.Path)
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}

	srv, err := server.New(cfg, store, server.Options{Logger: logger})
	if err != nil {
		return err
	}

	// The watcher is built first so a failure leaves nothing running.
	var fw *watcher.FileWatcher
	if cfg.Content.Watch && cfg.Content.Path != "" {
		fw, err = buildWatcher(cfg, store, logger)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	if fw != nil {
		g.Go(func() error {
			return fw.Run(gctx)
		})
	}

	logger.Info(ctx, "Serving Hope Haven",
		"url", fmt.Sprintf("http://%s", cfg.Server.Addr()),
		"content", cfg.Content.Path,
		"reduced_motion", cfg.Animation.ReducedMotion)

	return g.Wait()
}

// buildWatcher is swapped in tests.
var buildWatcher = newContentWatcher

// newContentWatcher reloads store whenever its backing file changes. A file
// that fails to parse is logged and the previous content stays live.
func newContentWatcher(cfg *config.Config, store *content.Store, logger logging.Logger) (*watcher.FileWatcher, error) {
	fw, err := watcher.NewFileWatcher(watcher.Options{
		Debounce: cfg.Content.Debounce,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw.AddFilter(watcher.YAMLFilter)
	fw.AddFilter(watcher.NoBackupFilter)
	fw.AddFilter(watcher.NoGitFilter)
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		ctx := context.Background()
		op := logging.StartOperation(logger, "content_reload")
		if err := store.Reload(); err != nil {
			op.EndWithError(ctx, err)
			logger.Warn(ctx, err, "Content reload failed; keeping previous content", "path", store.Path())
			return nil
		}
		op.End(ctx)
		logger.Info(ctx, "Content reloaded", "path", store.Path(), "events", len(events))
		return nil
	})

	if err := fw.WatchFile(store.Path()); err != nil {
		fw.Stop()
		return nil, fmt.Errorf("failed to watch %s: %w", store.Path(), err)
	}
	return fw, nil
}
