package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"invoicer/internal/export"
	"invoicer/internal/logger"
	"invoicer/internal/render"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Export the working invoice as an A4 PDF",
	Long: `Export the working invoice as a single-page A4 PDF named
invoice-<number>.pdf.

By default the page is drawn as an image, exactly as previewed. With
--vector the PDF is built from text instead, so it can be searched and
copied from.`,
	Example: `  invoicer download --dir ./out
  invoicer download --vector`,
	Args: cobra.NoArgs,
	RunE: runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().String("dir", ".", "Directory to write the PDF to")
	downloadCmd.Flags().Bool("vector", false, "Write a text PDF instead of an image PDF")
}

func runDownload(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("download")

	dir, _ := cmd.Flags().GetString("dir")
	vector, _ := cmd.Flags().GetBool("vector")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	inv, err := readDocument(documentPath)
	if err != nil {
		return err
	}

	exporter, err := export.NewPDFExporter()
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cfg.ExportTimeout, log)
	defer cancel()

	layout := render.Build(inv)
	var (
		data []byte
		info export.RasterInfo
	)
	if vector {
		data, err = exporter.VectorPDF(ctx, layout)
	} else {
		var buf bytes.Buffer
		info, err = exporter.RasterPDF(ctx, layout, &buf)
		data = buf.Bytes()
	}
	if err != nil {
		if errors.Is(err, export.ErrCanceled) {
			return fmt.Errorf("PDF export did not finish in time, raise EXPORT_TIMEOUT: %w", err)
		}
		return err
	}

	path := filepath.Join(dir, export.Filename(inv.InvoiceNumber))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	log.Info().
		Str("file", path).
		Int("size", len(data)).
		Bool("vector", vector).
		Msg("PDF written")
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
	if info.Clipped {
		fmt.Fprintln(cmd.OutOrStdout(), "Warning: the invoice does not fit on one A4 page and its bottom was cut off; use --vector for a multi-page PDF")
	}
	return nil
}
