package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/hopehaven/internal/config"
	"github.com/conneroisu/hopehaven/internal/content"
)

var validateFormat string

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate [content.yml]",
	Short: "Check configuration and content",
	Long: `Load the configuration and the content file and report any problems:

- Invalid ports, hosts or intervals
- Content paths with directory traversal
- Unknown keys or malformed YAML in the content file
- Missing required copy, slides or malformed colours

Examples:
  hopehaven validate                  # Check .hopehaven.yml and its content file
  hopehaven validate content.yml      # Check a specific content file
  hopehaven validate --format json    # Output the summary as JSON`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidateCommand,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
}

// ValidationSummary is what validate reports on success.
type ValidationSummary struct {
	ContentPath string `json:"content_path"`
	Sections    int    `json:"nav_items"`
	Projects    int    `json:"projects"`
	Slides      int    `json:"slides"`
	Stats       int    `json:"stats"`
}

func runValidateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	path := cfg.Content.Path
	if len(args) == 1 {
		path = args[0]
	}

	c, err := content.Load(path)
	if err != nil {
		return fmt.Errorf("invalid content: %w", err)
	}

	summary := ValidationSummary{
		ContentPath: path,
		Sections:    len(c.Nav),
		Projects:    len(c.Projects),
		Slides:      len(c.About.Slides),
		Stats:       len(c.Hero.Stats),
	}
	if summary.ContentPath == "" {
		summary.ContentPath = "(built-in)"
	}

	out := cmd.OutOrStdout()
	switch validateFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case "text":
		fmt.Fprintln(out, "Configuration OK")
		fmt.Fprintf(out, "Content OK: %s\n", summary.ContentPath)
		fmt.Fprintf(out, "  %d nav items, %d stats, %d slides, %d projects\n",
			summary.Sections, summary.Stats, summary.Slides, summary.Projects)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json)", validateFormat)
	}
}
