package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invoicer/internal/logger"
	"invoicer/internal/store"
)

var loadCmd = &cobra.Command{
	Use:   "load <id>",
	Short: "Replace the working invoice with a saved one",
	Long: `Copy a saved invoice into the working invoice file. The saved record is
not changed by later edits; save again to store the edited version.`,
	Example: `  invoicer list
  invoicer load 5f0c1c9e-8f0a-4f5e-9d55-1b0f2c7e3a11 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().Bool("force", false, "Replace an existing working invoice")
}

func runLoad(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("load")
	force, _ := cmd.Flags().GetBool("force")
	id := args[0]

	if _, err := os.Stat(documentPath); err == nil && !force {
		return fmt.Errorf("%s already exists, use --force to replace it", documentPath)
	}

	st, ctx, cancel, err := openStore(log)
	if err != nil {
		return err
	}
	defer cancel()
	defer st.Close()

	rec, err := st.Get(ctx, id)
	if err != nil {
		return handleStoreError(err, log)
	}

	inv := store.Load(rec)
	if err := writeDocument(documentPath, inv); err != nil {
		return err
	}

	log.Info().Str("id", id).Str("file", documentPath).Msg("Loaded saved invoice")
	fmt.Fprintf(cmd.OutOrStdout(), "Loaded invoice %s into %s\n", inv.InvoiceNumber, documentPath)
	return nil
}
