package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"invoicer/internal/logger"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("delete")

	st, ctx, cancel, err := openStore(log)
	if err != nil {
		return err
	}
	defer cancel()
	defer st.Close()

	if err := st.Delete(ctx, args[0]); err != nil {
		return handleStoreError(err, log)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}
