package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoicer/internal/invoice"
	"invoicer/internal/logger"
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a new working invoice",
	Long: `Create a new working invoice: number 001, issued today, due in 30 days,
with no line items and no payments. Header fields can be set right away
with --set.`,
	Example: `  # Start a fresh invoice in invoice.json
  invoicer new

  # Start one for a client, replacing an existing file
  invoicer new --force --set clientName="ACME Ltd" --set invoiceNumber=042`,
	Args: cobra.NoArgs,
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)

	newCmd.Flags().Bool("force", false, "Replace an existing working invoice")
	newCmd.Flags().StringArray("set", nil, "Set a header field (field=value), repeatable")
}

func runNew(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("new")

	force, _ := cmd.Flags().GetBool("force")
	sets, _ := cmd.Flags().GetStringArray("set")

	if _, err := os.Stat(documentPath); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to replace it", documentPath)
	}

	cmds, err := parseSetFlags(sets)
	if err != nil {
		return err
	}

	env, err := editEnv()
	if err != nil {
		return err
	}
	inv := invoice.ApplyAll(invoice.NewInvoice(env.Today()), env, cmds...)
	if err := writeDocument(documentPath, inv); err != nil {
		return err
	}

	log.Info().
		Str("file", documentPath).
		Str("invoice_number", inv.InvoiceNumber).
		Msg("Created working invoice")
	fmt.Fprintf(cmd.OutOrStdout(), "Created invoice %s in %s\n", inv.InvoiceNumber, documentPath)
	return nil
}
