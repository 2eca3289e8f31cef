package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"invoicer/internal/export"
	"invoicer/internal/logger"
	"invoicer/internal/render"
)

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Open the working invoice in the browser's print dialog",
	Long: `Write the working invoice as a print page and open it with the system
browser. The page opens the print dialog half a second after loading.

When no browser can be opened (for example over SSH) the page is still
written and its path is reported.`,
	Example: `  invoicer print

  # Only write the page
  invoicer print --no-open --dir ./out`,
	Args: cobra.NoArgs,
	RunE: runPrint,
}

func init() {
	rootCmd.AddCommand(printCmd)

	printCmd.Flags().String("dir", "", "Directory for the print page (default: system temp dir)")
	printCmd.Flags().Bool("no-open", false, "Write the print page without opening it")
}

func runPrint(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("print")

	dir, _ := cmd.Flags().GetString("dir")
	noOpen, _ := cmd.Flags().GetBool("no-open")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	inv, err := readDocument(documentPath)
	if err != nil {
		return err
	}

	var opener export.Opener
	if !noOpen {
		opener = export.BrowserOpener{}
	}
	printer := export.NewPrinter(opener)
	if dir != "" {
		printer = printer.WithDir(dir)
	}

	ctx, cancel := commandContext(cfg.ExportTimeout, log)
	defer cancel()

	path, err := printer.Print(ctx, render.Build(inv))
	if errors.Is(err, export.ErrNoRenderingSurface) {
		if noOpen {
			fmt.Fprintf(cmd.OutOrStdout(), "Print page written to %s\n", path)
			return nil
		}
		return fmt.Errorf("could not open a browser, open %s to print: %w", path, err)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", path)
	return nil
}
