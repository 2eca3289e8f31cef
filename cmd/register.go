package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoicer/internal/logger"
	"invoicer/internal/register"
	"invoicer/internal/store"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Write saved invoices to a register spreadsheet",
	Long: `Write one row per saved invoice (id, number, dates, client, subtotal,
payments, total, saved time) to an Excel file or a Google Sheet.

For Google Sheets the worksheet is created with a bold header row if it
does not exist, and rows are appended below existing data.

Environment variables for --sheet:
  GOOGLE_SHEET_URL - URL of the target spreadsheet
  GOOGLE_SHEET_WORKSHEET - worksheet name (default: Invoices)
  GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS - service account`,
	Example: `  invoicer register --xlsx invoices.xlsx
  invoicer register --sheet`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().String("xlsx", "", "Write the register to this Excel file")
	registerCmd.Flags().Bool("sheet", false, "Append the register to the configured Google Sheet")
	registerCmd.Flags().String("worksheet", "", "Worksheet name (default: GOOGLE_SHEET_WORKSHEET)")
	registerCmd.MarkFlagsMutuallyExclusive("xlsx", "sheet")
	registerCmd.MarkFlagsOneRequired("xlsx", "sheet")
}

func runRegister(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("register")

	xlsxPath, _ := cmd.Flags().GetString("xlsx")
	toSheet, _ := cmd.Flags().GetBool("sheet")
	worksheet, _ := cmd.Flags().GetString("worksheet")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if worksheet == "" {
		worksheet = cfg.GoogleSheetWorksheet
	}
	if toSheet && cfg.GoogleSheetURL == "" {
		return fmt.Errorf("GOOGLE_SHEET_URL is not set")
	}

	st, ctx, cancel, err := openStore(log)
	if err != nil {
		return err
	}
	defer cancel()
	defer st.Close()

	records, err := st.List(ctx)
	if err != nil {
		return handleStoreError(err, log)
	}

	if toSheet {
		// the store deadline does not cover the spreadsheet round trips
		sheetCtx, sheetCancel := commandContext(cfg.ExportTimeout, log)
		defer sheetCancel()
		if err := appendToSheet(sheetCtx, cfg.GoogleSheetURL, cfg.GoogleCredentialsJSON,
			cfg.GoogleApplicationCredentials, worksheet, records); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Appended %d invoices to worksheet %s\n", len(records), worksheet)
		return nil
	}

	file, err := os.Create(xlsxPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", xlsxPath, err)
	}
	if err := register.WriteXLSX(file, records, worksheet); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", xlsxPath, err)
	}

	log.Info().Str("file", xlsxPath).Int("rows", len(records)).Msg("Register written")
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d invoices to %s\n", len(records), xlsxPath)
	return nil
}

func appendToSheet(ctx context.Context, sheetURL, credsJSON, credsFile, worksheet string, records []store.Record) error {
	sheet, err := register.NewSheetsRegister(ctx, sheetURL, credsJSON, credsFile)
	if err != nil {
		return fmt.Errorf("failed to connect to Google Sheets: %w", err)
	}
	return sheet.Append(ctx, records, worksheet)
}
