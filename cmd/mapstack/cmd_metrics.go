package main

import (
	"fmt"
	"os"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/mapstack/pkg/metrics"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Dump client metrics in Prometheus text format",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		families, err := metrics.Registry.Gather()
		if err != nil {
			return fmt.Errorf("gather metrics: %w", err)
		}

		encoder := expfmt.NewEncoder(os.Stdout, expfmt.NewFormat(expfmt.TypeTextPlain))
		for _, mf := range families {
			if err := encoder.Encode(mf); err != nil {
				return fmt.Errorf("encode metrics: %w", err)
			}
		}
		return nil
	},
}
