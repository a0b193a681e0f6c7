package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/cli-runtime/pkg/genericiooptions"
)

// version is the CLI's own release string; it has no bearing on the
// Kubernetes API version spoken by any connected cluster.
const version = "0.1.0"

// NewRootCmd builds the kubiq root command: connection flags, output
// flags, and a RunE that treats every positional argument after the
// resource name as query tokens (spec §6's CLI surface).
func NewRootCmd(streams genericiooptions.IOStreams) *cobra.Command {
	configFlags := genericclioptions.NewConfigFlags(true)
	opts := &queryOptions{}
	showVersion := false

	rootCmd := &cobra.Command{
		Use:           "kubiq [flags] <resource> <query-tokens...>",
		Short:         "Query a Kubernetes cluster with a SQL-flavored predicate/sort/aggregate language.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(streams.Out, "kubiq %s\n", version)
				return nil
			}
			if len(args) == 0 {
				return cmd.Help()
			}
			return runQuery(cmd.Context(), configFlags, opts, streams, args)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})

	f := rootCmd.Flags()
	f.SortFlags = false
	f.StringVarP(&opts.output, "output", "o", "table", "Output format: table|json|yaml.")
	f.BoolVarP(&opts.describe, "describe", "d", false, "Show every leaf instead of the name-only summary.")
	f.BoolVar(&opts.noPushdownWarnings, "no-pushdown-warnings", false, "Suppress stderr planner/runtime diagnostics.")
	f.BoolVarP(&showVersion, "version", "V", false, "Print version and exit.")

	conn := pflag.NewFlagSet("Kubernetes connection flags", pflag.ContinueOnError)
	configFlags.AddFlags(conn)
	rootCmd.Flags().AddFlagSet(conn)

	return rootCmd
}
