package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"invoicer/internal/invoice"
	"invoicer/internal/logger"
	"invoicer/internal/money"
	"invoicer/pkg/models"
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the working invoice",
	Long: `Apply edits to the working invoice. Edits run in this order: the
--commands file, header fields, new items, item updates, item removals,
new payments, payment updates, payment removals.

Header fields: invoiceNumber, date, dueDate, companyName, companyAddress,
clientName, clientAddress, notes, paymentTerms.
Item fields: description, quantity, price.
Payment fields: amount, date, description.

Numbers that do not parse, negative numbers, and amounts above
1000000000000000 are stored as 0. Dates use
YYYY-MM-DD; anything else clears the date. Updating or removing an id that
does not exist changes nothing.`,
	Example: `  # Add two empty line items and print their ids
  invoicer edit --add-item 2

  # Fill in an item
  invoicer edit --item 1811234567890.description="Consulting" --item 1811234567890.price=125.50

  # Record a payment and set the client
  invoicer edit --set clientName="ACME Ltd" --add-discount 1

  # Apply a JSON command batch from stdin
  echo '[{"op":"add_item"}]' | invoicer edit --commands -

  # Print the flags as a JSON batch for POST /api/draft/commands
  invoicer edit --set clientName="ACME Ltd" --add-item 1 --dry-run`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.Flags().String("commands", "", "JSON command batch file ('-' for stdin)")
	editCmd.Flags().StringArray("set", nil, "Set a header field (field=value)")
	editCmd.Flags().Int("add-item", 0, "Number of empty line items to add")
	editCmd.Flags().StringArray("item", nil, "Update a line item (id.field=value)")
	editCmd.Flags().StringArray("remove-item", nil, "Remove a line item by id")
	editCmd.Flags().Int("add-discount", 0, "Number of payments to add")
	editCmd.Flags().StringArray("discount", nil, "Update a payment (id.field=value)")
	editCmd.Flags().StringArray("remove-discount", nil, "Remove a payment by id")
	editCmd.Flags().Bool("dry-run", false, "Print the edits as a JSON command batch without applying them")
}

// editFlags holds the raw edit flags in application order.
type editFlags struct {
	batch           []byte
	sets            []string
	addItems        int
	items           []string
	removeItems     []string
	addDiscounts    int
	discounts       []string
	removeDiscounts []string
}

func runEdit(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("edit")

	flags, err := readEditFlags(cmd)
	if err != nil {
		return err
	}
	cmds, err := flags.commands()
	if err != nil {
		return err
	}
	if len(cmds) == 0 {
		return fmt.Errorf("nothing to edit, see 'invoicer edit --help'")
	}
	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		return printBatch(cmd.OutOrStdout(), cmds)
	}

	inv, err := readDocument(documentPath)
	if err != nil {
		return err
	}
	env, err := editEnv()
	if err != nil {
		return err
	}

	edited := invoice.ApplyAll(inv, env, cmds...)
	if err := writeDocument(documentPath, edited); err != nil {
		return err
	}

	log.Info().
		Str("file", documentPath).
		Int("commands", len(cmds)).
		Msg("Edited working invoice")

	out := cmd.OutOrStdout()
	for _, item := range addedItems(inv, edited) {
		fmt.Fprintf(out, "Added item %s\n", item.ID)
	}
	for _, d := range addedDiscounts(inv, edited) {
		fmt.Fprintf(out, "Added payment %s\n", d.ID)
	}
	totals := invoice.ComputeTotals(edited)
	fmt.Fprintf(out, "Final total: %s\n", money.Format(totals.FinalTotal))
	return nil
}

func readEditFlags(cmd *cobra.Command) (editFlags, error) {
	var f editFlags

	batchPath, _ := cmd.Flags().GetString("commands")
	f.sets, _ = cmd.Flags().GetStringArray("set")
	f.addItems, _ = cmd.Flags().GetInt("add-item")
	f.items, _ = cmd.Flags().GetStringArray("item")
	f.removeItems, _ = cmd.Flags().GetStringArray("remove-item")
	f.addDiscounts, _ = cmd.Flags().GetInt("add-discount")
	f.discounts, _ = cmd.Flags().GetStringArray("discount")
	f.removeDiscounts, _ = cmd.Flags().GetStringArray("remove-discount")

	if f.addItems < 0 || f.addDiscounts < 0 {
		return editFlags{}, fmt.Errorf("--add-item and --add-discount must not be negative")
	}

	switch batchPath {
	case "":
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return editFlags{}, fmt.Errorf("failed to read commands from stdin: %w", err)
		}
		f.batch = data
	default:
		data, err := os.ReadFile(batchPath)
		if err != nil {
			return editFlags{}, fmt.Errorf("failed to read commands file: %w", err)
		}
		f.batch = data
	}
	return f, nil
}

// commands decodes every flag into commands. Nothing is applied unless all
// of them decode.
func (f editFlags) commands() ([]invoice.Command, error) {
	var cmds []invoice.Command

	if len(f.batch) > 0 {
		batch, err := invoice.DecodeCommands(f.batch)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, batch...)
	}

	sets, err := parseSetFlags(f.sets)
	if err != nil {
		return nil, err
	}
	cmds = append(cmds, sets...)

	for i := 0; i < f.addItems; i++ {
		cmds = append(cmds, invoice.AddItem{})
	}
	for _, a := range f.items {
		c, err := invoice.ParseUpdateItem(a)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, c)
	}
	for _, id := range f.removeItems {
		cmds = append(cmds, invoice.RemoveItem{ID: id})
	}

	for i := 0; i < f.addDiscounts; i++ {
		cmds = append(cmds, invoice.AddDiscount{})
	}
	for _, a := range f.discounts {
		c, err := invoice.ParseUpdateDiscount(a)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, c)
	}
	for _, id := range f.removeDiscounts {
		cmds = append(cmds, invoice.RemoveDiscount{ID: id})
	}

	return cmds, nil
}

// printBatch writes cmds in the wire form accepted by --commands and the
// preview server.
func printBatch(out io.Writer, cmds []invoice.Command) error {
	data, err := invoice.EncodeCommands(cmds)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}

func parseSetFlags(sets []string) ([]invoice.Command, error) {
	cmds := make([]invoice.Command, 0, len(sets))
	for _, a := range sets {
		c, err := invoice.ParseSetField(a)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, c)
	}
	return cmds, nil
}

func addedItems(before, after models.Invoice) []models.LineItem {
	known := lo.SliceToMap(before.Items, func(item models.LineItem) (string, bool) { return item.ID, true })
	return lo.Filter(after.Items, func(item models.LineItem, _ int) bool { return !known[item.ID] })
}

func addedDiscounts(before, after models.Invoice) []models.Discount {
	known := lo.SliceToMap(before.Discounts, func(d models.Discount) (string, bool) { return d.ID, true })
	return lo.Filter(after.Discounts, func(d models.Discount, _ int) bool { return !known[d.ID] })
}
