package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/conneroisu/hopehaven/internal/config"
	"github.com/conneroisu/hopehaven/internal/content"
	"github.com/conneroisu/hopehaven/internal/logging"
	"github.com/conneroisu/hopehaven/internal/preview"
)

var previewTouch bool

var previewCmd = &cobra.Command{
	Use:     "preview",
	Aliases: []string{"p"},
	Short:   "Animate the hero particle field in the terminal",
	Long: `Run the hero particle field and the About carousel in the terminal using
the same animation settings as the web server.

Keys: space pause/resume, ←/→ change slide, q or Esc quit.

Examples:
  hopehaven preview
  hopehaven preview --touch
  hopehaven preview --content content.yml`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), map[string]string{"content": "content.path"})
	},
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().BoolVar(&previewTouch, "touch", false, "Use the touch-device particle density")
	previewCmd.Flags().StringP("content", "c", "", "Content YAML file (default: built-in content)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	c, err := content.Load(cfg.Content.Path)
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	// Logging to the terminal would corrupt the screen.
	p, err := preview.New(screen, c, preview.Options{
		Animation: cfg.Animation,
		Touch:     previewTouch,
		Logger:    logging.Nop(),
	})
	if err != nil {
		screen.Fini()
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return p.Run(ctx)
}
