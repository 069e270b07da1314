// Waypoint - Location-Based Content Discovery Map Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/waypoint/internal/clustering"
	"github.com/tomtom215/waypoint/internal/models"
)

type clusterOptions struct {
	file         string
	latDelta     float64
	baseDistance float64
	cohesion     float64
	pretty       bool
}

// newClusterCommand runs the clustering engine over a JSON array of
// candidates and prints the resulting cluster items.
func newClusterCommand() *cobra.Command {
	opts := &clusterOptions{}

	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster a candidates file offline and print the result as JSON",
		Example: "  waypoint cluster --file candidates.json --lat-delta 0.05\n" +
			"  cat candidates.json | waypoint cluster --file - --pretty",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCluster(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "candidates JSON file, or - for stdin")
	f.Float64Var(&opts.latDelta, "lat-delta", 0.05, "latitude span of the visible region")
	f.Float64Var(&opts.baseDistance, "base-distance", clustering.DefaultBaseDistance, "cluster radius at the disable threshold")
	f.Float64Var(&opts.cohesion, "cohesion", clustering.DefaultCohesion, "maximum mean member distance as a fraction of the radius")
	f.BoolVar(&opts.pretty, "pretty", false, "indent the output")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runCluster(stdin io.Reader, stdout io.Writer, opts *clusterOptions) error {
	if opts.latDelta < 0 {
		return fmt.Errorf("lat-delta must not be negative, got %v", opts.latDelta)
	}

	var (
		data []byte
		err  error
	)
	if opts.file == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(opts.file)
	}
	if err != nil {
		return fmt.Errorf("read candidates: %w", err)
	}

	var candidates []models.MapMarkerCandidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return fmt.Errorf("decode candidates: %w", err)
	}

	cfg := clustering.DefaultConfig()
	cfg.BaseDistance = opts.baseDistance
	cfg.Cohesion = opts.cohesion
	engine := clustering.NewEngine(cfg)

	region := models.Region{LatitudeDelta: opts.latDelta, LongitudeDelta: opts.latDelta}
	if mappable := models.FilterMappable(candidates); len(mappable) > 0 {
		region.Latitude, region.Longitude = mappable[0].Coordinates()
	}
	items := engine.Cluster(candidates, region)

	var out []byte
	if opts.pretty {
		out, err = json.MarshalIndent(items, "", "  ")
	} else {
		out, err = json.Marshal(items)
	}
	if err != nil {
		return fmt.Errorf("encode cluster items: %w", err)
	}
	_, err = fmt.Fprintln(stdout, string(out))
	return err
}
