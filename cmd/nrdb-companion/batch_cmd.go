package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/NRDB-Companion/internal/batch"
	"github.com/ramonehamilton/NRDB-Companion/internal/output"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		all         bool
		stopOnError bool
		flags       pdfFlags
	)

	cmd := &cobra.Command{
		Use:   "batch <file>",
		Short: "Generate proxy PDFs for every decklist URL in a file",
		Long: `Generate proxy PDFs for a list of decklists. The file holds one
NetrunnerDB URL or decklist ID per line; blank lines and lines starting
with '#' are ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			inputs, err := batch.ReadURLs(args[0])
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				return NewExitError(fmt.Errorf("no decklist URLs found in %s", args[0]), ExitValidationError)
			}

			m, ix, err := a.openCollection(ctx)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			result, err := batch.Process(ctx, inputs,
				func(ctx context.Context, input string) (string, error) {
					return generateDeckProxies(ctx, a, m, ix, input, "", all, &flags)
				},
				batch.Options{
					StopOnError: stopOnError,
					OnProgress: func(current, total int, input string) {
						fmt.Fprintf(w, "[%d/%d] %s\n", current, total, input)
					},
					OnError: func(input string, err error) {
						output.Error("Failed", "input", input, "err", err)
					},
					Metrics: a.metrics,
				})
			if err != nil {
				return err
			}

			fmt.Fprintln(w)
			for _, item := range result.Items {
				switch {
				case !item.OK():
				case item.Output == "":
					fmt.Fprintf(w, "  %s %s: no proxies needed\n", output.StyleSuccess.Render("✔"), item.Input)
				default:
					fmt.Fprintf(w, "  %s %s: %s\n", output.StyleSuccess.Render("✔"), item.Input, item.Output)
				}
			}
			fmt.Fprintln(w, output.StyleHeading.Render(result.Summary()))
			if timing := a.metrics.Stats().DeckLatency; timing.Count > 0 {
				fmt.Fprintln(w, output.StyleDim.Render(fmt.Sprintf("Average %s per decklist (slowest %s)",
					msDuration(timing.Mean), msDuration(timing.Max))))
			}

			if result.Failed > 0 {
				return &ExitError{
					Err:     fmt.Errorf("%d of %d decklists failed", result.Failed, result.Total),
					Code:    ExitGeneralError,
					Printed: true,
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Print every card in each deck, not only missing ones")
	cmd.Flags().BoolVar(&stopOnError, "stop-on-error", false, "Stop at the first failing decklist")
	addPDFFlags(cmd, &flags)
	return cmd
}

func msDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond)).Round(time.Millisecond)
}
