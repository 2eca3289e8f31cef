package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"invoicer/internal/invoice"
	"invoicer/internal/logger"
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a snapshot of the working invoice to the store",
	Long: `Save a copy of the working invoice to the configured store
(STORE_BACKEND: firestore, postgres or sqlite) together with its subtotal,
total payments and final total. Later edits do not change the saved copy.

Each save creates a new record; saving twice stores two copies.`,
	Args: cobra.NoArgs,
	RunE: runSave,
}

func init() {
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("save")

	inv, err := readDocument(documentPath)
	if err != nil {
		return err
	}

	review := invoice.NewReviewer().Review(inv)
	for _, w := range review.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}

	st, ctx, cancel, err := openStore(log)
	if err != nil {
		return err
	}
	defer cancel()
	defer st.Close()

	id, err := st.Save(ctx, inv)
	if err != nil {
		return handleStoreError(err, log)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved invoice %s as %s\n", inv.InvoiceNumber, id)
	return nil
}
