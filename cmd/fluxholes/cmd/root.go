// Package cmd implements the fluxholes command line.
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/piwi3910/fluxholes/internal/model"
	"github.com/piwi3910/fluxholes/internal/project"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	verbose   bool
	configDir string
	logger    *log.Logger
}

func (g *globals) configPath() string {
	return filepath.Join(g.configDir, "config.json")
}

func (g *globals) presetPath() string {
	return filepath.Join(g.configDir, "presets.json")
}

func (g *globals) loadConfig() (model.AppConfig, error) {
	cfg, err := project.LoadAppConfig(g.configPath())
	if err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to load config %s: %w", g.configPath(), err)
	}
	g.logf("loaded config from %s", g.configPath())
	return cfg, nil
}

func (g *globals) logf(format string, args ...any) {
	if g.verbose {
		g.logger.Printf(format, args...)
	}
}

// NewRootCmd builds the command tree. Each call returns an independent
// tree with its own flag state.
func NewRootCmd() *cobra.Command {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:   "fluxholes",
		Short: "fluxholes - hole grid placement for layered designs",
		Long: `fluxholes fills a region of a layered design with a regular grid of
holes, keeping a clearance margin around circuit geometry and staying out
of exclusion layers.

Designs are read from DXF (integer layer names) or GeoJSON (numeric
"layer" feature property) and written back in either format.

Examples:
  fluxholes holes board.dxf out.dxf --zone-layer 1 --hole-layer 100
  fluxholes batch board.dxf jobs.xlsx out.dxf --drill drill.xlsx
  fluxholes holes board.dxf out.dxf --zone-layer 1 --gcode holes.nc --tool 0.8
  fluxholes layers board.dxf
  fluxholes presets save fine --grid 2 --hole 0.3`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			g.logger = log.New(cmd.ErrOrStderr(), "fluxholes: ", log.LstdFlags)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&g.configDir, "config-dir", project.DefaultConfigDir(), "directory holding config.json and presets.json")

	rootCmd.AddCommand(
		newHolesCmd(g),
		newBatchCmd(g),
		newLayersCmd(g),
		newConfigCmd(g),
		newPresetsCmd(g),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
