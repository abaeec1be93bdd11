package main

import (
	"fmt"

	"github.com/geshuning/kdforest"
	"github.com/spf13/cobra"
)

func newQueryCmd() *cobra.Command {
	f := &datasetFlags{}
	var k int
	var numQueries int

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Build a forest then run k-NN queries against random query vectors drawn from it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, f, k, numQueries)
		},
	}
	f.bindCommon(cmd.Flags())
	cmd.Flags().IntVar(&k, "k", 10, "number of neighbors to request per query")
	cmd.Flags().IntVar(&numQueries, "num-queries", 5, "number of queries to run")
	return cmd
}

func runQuery(cmd *cobra.Command, f *datasetFlags, k, numQueries int) error {
	points, dim, err := f.loadOrGeneratePoints()
	if err != nil {
		return err
	}
	metric, err := f.metricValue()
	if err != nil {
		return err
	}
	threshold, err := f.thresholdValue()
	if err != nil {
		return err
	}

	rng := kdforest.NewRandSource(f.seed1, f.seed2)
	forest := kdforest.New[float64](dim, f.numTrees, metric,
		kdforest.WithThresholdMethod(threshold),
		kdforest.WithMaxComparisons(f.maxCompare),
		kdforest.WithRandSource(rng),
	)
	if err := forest.Build(points); err != nil {
		return err
	}

	searcher := forest.NewSearcher()
	defer searcher.Close()

	n := len(points) / dim
	out := make([]kdforest.Neighbor, k)

	for q := 0; q < numQueries; q++ {
		// Reuse an indexed point as a query so results are interpretable:
		// the first hit should be (or be very close to) the point itself.
		queryIdx := int(rng.Uint32()) % n
		query := points[queryIdx*dim : (queryIdx+1)*dim]

		comparisons := searcher.Query(out, query)
		logger.Debug().Int("query", q).Int("source_index", queryIdx).
			Int("comparisons", comparisons).Msg("query complete")

		fmt.Fprintf(cmd.OutOrStdout(), "query %d (source point %d, %d comparisons):\n", q, queryIdx, comparisons)
		for rank, nb := range out {
			if nb.Index < 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "  %d: (unfilled)\n", rank)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  %d: index=%d distance=%.6f\n", rank, nb.Index, nb.Distance)
		}
	}
	return nil
}
