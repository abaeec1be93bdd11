package main

import (
	"fmt"
	"time"

	"github.com/geshuning/kdforest"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	f := &datasetFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a forest over generated or CSV-loaded points and report tree statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, f)
		},
	}
	f.bindCommon(cmd.Flags())
	return cmd
}

func runBuild(cmd *cobra.Command, f *datasetFlags) error {
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

	n := len(points) / dim
	logger.Info().Int("dim", dim).Int("points", n).Int("trees", f.numTrees).
		Str("metric", f.metric).Msg("building forest")

	bar := progressbar.Default(int64(f.numTrees), "building trees")

	forest := kdforest.New[float64](dim, f.numTrees, metric,
		kdforest.WithThresholdMethod(threshold),
		kdforest.WithMaxComparisons(f.maxCompare),
		kdforest.WithRandSource(kdforest.NewRandSource(f.seed1, f.seed2)),
		kdforest.WithProgress(func(done, total int) {
			_ = bar.Set(done)
		}),
	)

	start := time.Now()
	if err := forest.Build(points); err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Fprintf(cmd.OutOrStdout(), "built %d trees over %d points (dim=%d) in %s\n", f.numTrees, n, dim, elapsed)
	for i := 0; i < forest.NumTrees(); i++ {
		fmt.Fprintf(cmd.OutOrStdout(), "  tree %d: depth=%d nodes=%d\n", i, forest.TreeDepth(i), forest.TreeNumUsedNodes(i))
	}
	return nil
}
