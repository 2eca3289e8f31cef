package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"invoicer/internal/invoice"
	"invoicer/internal/money"
	"invoicer/pkg/models"
)

var totalsCmd = &cobra.Command{
	Use:   "totals",
	Short: "Show line items, payments and totals of the working invoice",
	Long: `Show the working invoice's line items and payments with the derived
subtotal, total payments and final total. A negative final total is kept
as a credit balance and reported as a warning.`,
	Args: cobra.NoArgs,
	RunE: runTotals,
}

// TotalsOutput is the JSON form of the totals command.
type TotalsOutput struct {
	InvoiceNumber string   `json:"invoice_number"`
	Subtotal      string   `json:"subtotal"`
	TotalDiscount string   `json:"total_discount"`
	FinalTotal    string   `json:"final_total"`
	Warnings      []string `json:"warnings"`
}

func init() {
	rootCmd.AddCommand(totalsCmd)

	totalsCmd.Flags().Bool("json", false, "Print totals as JSON")
}

func runTotals(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	inv, err := readDocument(documentPath)
	if err != nil {
		return err
	}
	review := invoice.NewReviewer().Review(inv)

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(TotalsOutput{
			InvoiceNumber: inv.InvoiceNumber,
			Subtotal:      money.Format(review.Totals.Subtotal),
			TotalDiscount: money.Format(review.Totals.TotalDiscount),
			FinalTotal:    money.Format(review.Totals.FinalTotal),
			Warnings:      review.Warnings,
		})
	}

	printTotals(out, inv, review)
	return nil
}

func printTotals(out io.Writer, inv models.Invoice, review *invoice.ReviewResult) {
	fmt.Fprintf(out, "Invoice %s  %s  due %s\n", inv.InvoiceNumber, inv.IssueDate, inv.DueDate)
	if inv.ClientName != "" {
		fmt.Fprintf(out, "Bill to: %s\n", inv.ClientName)
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%-20s %-30s %6s %12s %12s\n", "ID", "Description", "Qty", "Price", "Total")
	for _, item := range inv.Items {
		fmt.Fprintf(out, "%-20s %-30s %6s %12s %12s\n",
			item.ID,
			truncate(item.Description, 30),
			money.FormatQuantity(item.Quantity),
			money.Format(item.UnitPrice),
			money.Format(invoice.LineTotal(item)))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%-20s %-30s %-10s %12s\n", "Payment", "Description", "Date", "Amount")
	for _, d := range inv.Discounts {
		fmt.Fprintf(out, "%-20s %-30s %-10s %12s\n",
			d.ID, truncate(d.Description, 30), d.Date, money.FormatNegated(d.Amount))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%-12s %12s\n", "Subtotal", money.Format(review.Totals.Subtotal))
	fmt.Fprintf(out, "%-12s %12s\n", "Payments", money.FormatNegated(review.Totals.TotalDiscount))
	fmt.Fprintf(out, "%-12s %12s\n", "Final total", money.Format(review.Totals.FinalTotal))

	for _, w := range review.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
