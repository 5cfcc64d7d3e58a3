package cmd

import (
	"github.com/spf13/cobra"

	"github.com/piwi3910/fluxholes/internal/engine"
	"github.com/piwi3910/fluxholes/internal/export"
)

func newHolesCmd(g *globals) *cobra.Command {
	var (
		hf     holeFlags
		zf     zoneFlags
		name   string
		of     outputFlags
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "holes INPUT OUTPUT",
		Short: "Place one grid of holes and write the result",
		Long: `Fill the polygons of --zone-layer with a grid of holes, skipping any
hole centre inside the exclusion zone. The exclusion zone is the union of
the --circuit-layers buffered by --margin and the --exclusion-layers.

OUTPUT is written as DXF or GeoJSON depending on its extension. With
--dry-run the placement is computed and reported but OUTPUT is not written.`,
		Example: `  fluxholes holes board.dxf out.dxf --zone-layer 1 --hole-layer 100 --circuit-layers 2,3
  fluxholes holes board.geojson out.geojson --grid-type square --hole-type square --report report.pdf`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath, outPath := args[0], args[1]
			out := cmd.OutOrStdout()

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			zs, err := zf.settings(cmd, cfg)
			if err != nil {
				return err
			}
			hs, err := hf.settings(cmd, g, cfg)
			if err != nil {
				return err
			}

			d, err := loadDesign(g, inPath)
			if err != nil {
				return err
			}
			hz, err := engine.New(d, zs)
			if err != nil {
				return err
			}
			g.logf("exclusion zone: %d polygons, subgrid %dx%d", hz.Zone().Len(), zs.SubgridCount, zs.SubgridCount)

			place := hz.CreateHoles
			if dryRun {
				place = hz.Plan
			}
			result, err := place(hs)
			if err != nil {
				return err
			}
			if name == "" {
				name = d.Name
			}
			run := export.Run{Name: name, Result: result}
			printRun(out, run)

			if !dryRun {
				if err := writeDesign(outPath, d); err != nil {
					return err
				}
				printf(out, "Design written to %s\n", outPath)
			}
			if err := of.write(cmd, g, cfg, d, []export.Run{run}); err != nil {
				return err
			}
			rememberFile(g, cfg, inPath)
			return nil
		},
	}

	hf.register(cmd)
	zf.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "run name shown in reports (default: design name)")
	of.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute placements without writing OUTPUT")
	return cmd
}
