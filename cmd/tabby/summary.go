package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/tabby/internal/calculator"
	"github.com/mmynk/tabby/internal/models"
	"github.com/mmynk/tabby/internal/service"
)

func newSummaryCmd(flags *globalFlags) *cobra.Command {
	var payer string

	cmd := &cobra.Command{
		Use:   "summary FILE",
		Short: "Print a shareable summary of who owes whom",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bill, opts, err := loadBill(args[0], flags)
			if err != nil {
				return err
			}
			if payer != "" {
				if _, ok := bill.Person(payer); !ok {
					return fmt.Errorf("%w: payer %q is not one of the people", models.ErrValidation, payer)
				}
				bill.PayerID = payer
			}

			totals, err := calculator.ComputeTotals(bill.Items, bill.Shares, bill.People, bill.Charges, opts)
			if err != nil {
				return err
			}
			summary, err := calculator.Summarize(bill, totals)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if flags.json {
				return writeJSON(out, service.SummaryToAPI(summary))
			}
			_, err = fmt.Fprint(out, summary.Text())
			return err
		},
	}

	cmd.Flags().StringVar(&payer, "payer", "", "person who paid the restaurant (overrides the file)")
	return cmd
}
