package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/spf13/cobra"
)

func newLayersCmd(g *globals) *cobra.Command {
	var (
		showWKT bool
		only    []int
	)

	cmd := &cobra.Command{
		Use:   "layers INPUT",
		Short: "List the layers of a design",
		Long: `Print one line per layer with its polygon count, hole instance count and
bounding box. With --wkt every polygon is also printed as WKT.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDesign(g, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			wanted := func(layer int) bool {
				if len(only) == 0 {
					return true
				}
				for _, l := range only {
					if l == layer {
						return true
					}
				}
				return false
			}

			printf(out, "Design: %s\n", d.Name)
			printf(out, "Bounds: %s\n\n", formatBound(d.Bounds()))

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LAYER\tPOLYGONS\tHOLES\tBOUNDS")
			for _, s := range d.Stats() {
				if !wanted(s.Layer) {
					continue
				}
				fmt.Fprintf(tw, "%d\t%d\t%d\t%s\n", s.Layer, s.Polygons, s.Instances, formatBound(s.Bound))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if showWKT {
				for _, layer := range d.Layers() {
					if !wanted(layer) {
						continue
					}
					printf(out, "\n# layer %d\n", layer)
					for _, p := range d.Polygons(layer) {
						printf(out, "%s\n", wkt.MarshalString(p))
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showWKT, "wkt", false, "print every polygon as WKT")
	cmd.Flags().IntSliceVar(&only, "layer", nil, "only show these layers")
	return cmd
}

func formatBound(b orb.Bound) string {
	return fmt.Sprintf("(%g, %g) - (%g, %g)", b.Min[0], b.Min[1], b.Max[0], b.Max[1])
}
