package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/plantify/plantify-go/prediction"
)

// NewPredictCommand creates the predict command
func NewPredictCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "predict <image>",
		Short:   "Identify the disease on a leaf photo",
		Example: `  plantify predict ./tomato-leaf.jpg`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := readImage(args[0])
			if err != nil {
				return err
			}
			return root.run(cmd, func(s *Stack) error {
				res := s.Prediction.Predict(cmd.Context(), prediction.Image{
					Name:        img.name,
					ContentType: img.contentType,
					Data:        img.data,
					URI:         img.path,
				})
				if !res.OK() {
					return failure(res.Failure)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Disease:    %s\nConfidence: %.1f%%\n",
					res.Prediction.DiseaseName, res.Prediction.Confidence*100)
				return nil
			})
		},
	}
}

// NewHistoryCommand creates the history command
func NewHistoryCommand(root *RootOptions) *cobra.Command {
	var limit int
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent predictions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return root.run(cmd, func(s *Stack) error {
				if clearAll {
					if err := s.Prediction.ClearHistory(cmd.Context()); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
					return nil
				}

				entries, err := s.Prediction.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No predictions yet")
					return nil
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "TIME\tDISEASE\tCONFIDENCE")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%.1f%%\n", e.Time.Local().Format(time.DateTime), e.Disease, e.Confidence*100)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "Number of entries to show (0 for all)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete the history")

	return cmd
}
