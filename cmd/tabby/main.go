// Command tabby splits a bill described in a YAML or JSON file.
//
//	tabby totals dinner.yaml
//	tabby summary dinner.yaml --payer alice
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/tabby/internal/billfile"
	"github.com/mmynk/tabby/internal/calculator"
	"github.com/mmynk/tabby/internal/models"
	"github.com/mmynk/tabby/pkg/logging"
)

type globalFlags struct {
	unassigned string
	lenient    bool
	json       bool
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "tabby",
		Short:         "Split restaurant bills fairly, to the cent",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(flags.logLevel, "text")
		},
	}

	root.PersistentFlags().StringVar(&flags.unassigned, "unassigned", "",
		"unassigned item policy: in_base or exclude_from_base (overrides the file)")
	root.PersistentFlags().BoolVar(&flags.lenient, "lenient", false,
		"drop shares that reference unknown items or people instead of failing")
	root.PersistentFlags().BoolVar(&flags.json, "json", false, "print JSON instead of a table")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(newTotalsCmd(flags))
	root.AddCommand(newSummaryCmd(flags))
	return root
}

// loadBill reads a bill file and resolves the engine options, flags last.
func loadBill(path string, flags *globalFlags) (*models.Bill, calculator.Options, error) {
	f, err := billfile.Load(path)
	if err != nil {
		return nil, calculator.Options{}, err
	}
	bill, err := f.Bill()
	if err != nil {
		return nil, calculator.Options{}, fmt.Errorf("%s: %w", path, err)
	}
	opts, err := f.CalculatorOptions(calculator.DefaultOptions())
	if err != nil {
		return nil, opts, fmt.Errorf("%s: %w", path, err)
	}
	if flags.unassigned != "" {
		p, err := calculator.ParseUnassignedPolicy(flags.unassigned)
		if err != nil {
			return nil, opts, err
		}
		opts.Unassigned = p
	}
	if flags.lenient {
		opts.References = calculator.ReferencesLenient
	}
	return bill, opts, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
