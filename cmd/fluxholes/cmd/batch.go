package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/fluxholes/internal/engine"
	"github.com/piwi3910/fluxholes/internal/export"
	"github.com/piwi3910/fluxholes/internal/importer"
)

func newBatchCmd(g *globals) *cobra.Command {
	var (
		hf     holeFlags
		zf     zoneFlags
		of     outputFlags
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "batch INPUT JOBS OUTPUT",
		Short: "Run every job of a CSV or Excel job list against one design",
		Long: `Run a list of placement jobs against a single design. The exclusion zone is
built once and shared by every job; jobs run in file order and each one
sees the holes placed by the jobs before it.

JOBS is a CSV or XLSX file with the columns Name, Zone Layer, Hole Layer,
Grid Size, Hole Size, Grid Type and Hole Type. Grid Size and Hole Size
are required; empty cells in the other columns fall back to the hole
flags, the preset and the config. Any invalid row aborts the batch.`,
		Example: `  fluxholes batch board.dxf jobs.csv out.dxf --circuit-layers 2 --margin 0.5
  fluxholes batch board.dxf jobs.xlsx out.dxf --drill drill.xlsx --report report.pdf`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			inPath, jobsPath, outPath := args[0], args[1], args[2]
			out := cmd.OutOrStdout()

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			zs, err := zf.settings(cmd, cfg)
			if err != nil {
				return err
			}
			base, err := hf.settings(cmd, g, cfg)
			if err != nil {
				return err
			}

			jobs := importer.ImportJobs(jobsPath, base)
			for _, w := range jobs.Warnings {
				g.logf("%s: %s", jobsPath, w)
			}
			if len(jobs.Errors) > 0 {
				return fmt.Errorf("failed to import %s: %s", jobsPath, strings.Join(jobs.Errors, "; "))
			}
			if len(jobs.Jobs) == 0 {
				return fmt.Errorf("no jobs found in %s", jobsPath)
			}

			d, err := loadDesign(g, inPath)
			if err != nil {
				return err
			}
			hz, err := engine.New(d, zs)
			if err != nil {
				return err
			}

			place := hz.CreateHoles
			if dryRun {
				place = hz.Plan
			}
			runs := make([]export.Run, 0, len(jobs.Jobs))
			total := 0
			for _, job := range jobs.Jobs {
				result, err := place(job.Settings)
				if err != nil {
					return fmt.Errorf("job %q: %w", job.Name, err)
				}
				run := export.Run{Name: job.Name, Result: result}
				printRun(out, run)
				runs = append(runs, run)
				total += result.Accepted()
			}
			printf(out, "%d job(s), %d hole(s) placed\n", len(runs), total)

			if !dryRun {
				if err := writeDesign(outPath, d); err != nil {
					return err
				}
				printf(out, "Design written to %s\n", outPath)
			}
			if err := of.write(cmd, g, cfg, d, runs); err != nil {
				return err
			}
			rememberFile(g, cfg, inPath)
			return nil
		},
	}

	hf.register(cmd)
	zf.register(cmd)
	of.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute placements without writing OUTPUT")
	return cmd
}
