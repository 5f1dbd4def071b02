package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mmynk/tabby/internal/calculator"
	"github.com/mmynk/tabby/internal/service"
)

func newTotalsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "totals FILE",
		Short: "Show what each person owes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, opts, err := loadBill(args[0], flags)
			if err != nil {
				return err
			}
			totals, err := calculator.ComputeTotals(bill.Items, bill.Shares, bill.People, bill.Charges, opts)
			if err != nil {
				return err
			}
			if totals.IgnoredShares > 0 {
				slog.Warn("Dropped shares with unknown references", "count", totals.IgnoredShares)
			}

			out := cmd.OutOrStdout()
			if flags.json {
				return writeJSON(out, service.TotalsToAPI(totals))
			}
			return writeTotalsTable(out, totals)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTotalsTable(w io.Writer, t *calculator.BillTotals) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	money := func(d decimal.Decimal) string {
		return calculator.RoundCurrency(d).StringFixed(calculator.CurrencyPlaces)
	}

	fmt.Fprintln(tw, "PERSON\tITEMS\tDISCOUNT\tFEE\tTAX\tTIP\tTOTAL\t")
	for _, pt := range t.PersonTotals {
		name := pt.Name
		if name == "" {
			name = pt.PersonID
		}
		fmt.Fprintf(tw, "%s\t%s\t-%s\t%s\t%s\t%s\t%s\t\n", name,
			money(pt.Subtotal),
			money(pt.DiscountShare),
			money(pt.ServiceFeeShare),
			money(pt.TaxShare),
			money(pt.TipShare),
			money(pt.Total))
	}
	if !t.Unallocated.IsZero() {
		fmt.Fprintf(tw, "unclaimed\t\t\t\t\t\t%s\t\n", money(t.Unallocated))
	}
	fmt.Fprintf(tw, "TOTAL\t%s\t-%s\t%s\t%s\t%s\t%s\t\n",
		money(t.Subtotal), money(t.Discount), money(t.ServiceFee), money(t.Tax), money(t.Tip), money(t.Total))
	if !t.Adjustment.IsZero() {
		fmt.Fprintf(tw, "rounding %s applied to %s\t\t\t\t\t\t\t\n", t.Adjustment.String(), t.AdjustedPersonID)
	}
	return tw.Flush()
}
