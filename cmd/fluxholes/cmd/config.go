package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/piwi3910/fluxholes/internal/model"
	"github.com/piwi3910/fluxholes/internal/project"
)

func newConfigCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and manage the stored defaults",
	}
	cmd.AddCommand(
		newConfigShowCmd(g),
		newConfigInitCmd(g),
		newConfigExportCmd(g),
		newConfigImportCmd(g),
	)
	return cmd
}

func newConfigShowCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "# %s\n%s\n", g.configPath(), data)
			return nil
		},
	}
}

func newConfigInitCmd(g *globals) *cobra.Command {
	var (
		hf    holeFlags
		zf    zoneFlags
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the built-in defaults",
		Long: `Write config.json into the config directory. The hole and zone flags set
the stored defaults; anything not given keeps its built-in value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := g.configPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := model.DefaultAppConfig()
			zs, err := zf.settings(cmd, cfg)
			if err != nil {
				return err
			}
			hs, err := hf.settings(cmd, g, cfg)
			if err != nil {
				return err
			}
			cfg.Workers = hs.Workers
			hs.Workers = 0
			cfg.DefaultZone = zs
			cfg.DefaultHoles = hs

			if err := project.SaveAppConfig(path, cfg); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Config written to %s\n", path)
			return nil
		},
	}
	hf.register(cmd)
	zf.register(cmd)
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}

func newConfigExportCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Back up the config and presets to a single JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			presets, err := project.LoadPresets(g.presetPath())
			if err != nil {
				return fmt.Errorf("failed to load presets: %w", err)
			}
			if err := project.ExportAllData(args[0], cfg, presets); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Exported config and %d preset(s) to %s\n", len(presets.Presets), args[0])
			return nil
		},
	}
}

func newConfigImportCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Restore the config and presets from a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			g.logf("backup version %s created %s", backup.Version, backup.CreatedAt)
			if err := project.SaveAppConfig(g.configPath(), backup.Config); err != nil {
				return err
			}
			if err := project.SavePresets(g.presetPath(), backup.Presets); err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "Imported config and %d preset(s) from %s\n", len(backup.Presets.Presets), args[0])
			return nil
		},
	}
}
