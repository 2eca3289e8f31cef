package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"invoicer/internal/logger"
	"invoicer/internal/money"
	"invoicer/internal/register"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved invoices, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Bool("json", false, "Print the list as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("list")
	asJSON, _ := cmd.Flags().GetBool("json")

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

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(register.Rows(records))
	}

	if len(records) == 0 {
		fmt.Fprintln(out, "No saved invoices")
		return nil
	}

	fmt.Fprintf(out, "%-36s %-10s %-10s %-24s %12s  %s\n", "ID", "Number", "Date", "Client", "Total", "Saved")
	for _, rec := range records {
		fmt.Fprintf(out, "%-36s %-10s %-10s %-24s %12s  %s\n",
			rec.ID,
			truncate(rec.Document.InvoiceNumber, 10),
			rec.Document.IssueDate,
			truncate(rec.Document.ClientName, 24),
			money.Format(rec.TotalAmount),
			rec.CreatedAt.UTC().Format(register.SavedAtLayout))
	}
	return nil
}
