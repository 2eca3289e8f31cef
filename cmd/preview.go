package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoicer/internal/logger"
	"invoicer/internal/render"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render the working invoice as an HTML page",
	Long: `Render the working invoice as a standalone A4 HTML page. This is the
same layout the print and PDF exports use.`,
	Example: `  invoicer preview -o preview.html`,
	Args:    cobra.NoArgs,
	RunE:    runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("preview")
	outputPath, _ := cmd.Flags().GetString("output")

	inv, err := readDocument(documentPath)
	if err != nil {
		return err
	}

	page, err := render.NewHTMLRenderer().RenderPage(render.Build(inv), render.PageOptions{})
	if err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}

	if outputPath == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), page)
		return err
	}
	if err := os.WriteFile(outputPath, []byte(page), 0o644); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}

	log.Info().Str("output", outputPath).Msg("Preview written")
	return nil
}
