package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/fluxholes/internal/model"
	"github.com/piwi3910/fluxholes/internal/project"
)

func newPresetsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "presets",
		Aliases: []string{"preset"},
		Short:   "Manage named hole presets",
	}
	cmd.AddCommand(
		newPresetsListCmd(g),
		newPresetsSaveCmd(g),
		newPresetsDeleteCmd(g),
	)
	return cmd
}

func newPresetsListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := project.LoadPresets(g.presetPath())
			if err != nil {
				return fmt.Errorf("failed to load presets: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(store.Presets) == 0 {
				printf(out, "No presets saved.\n")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tGRID\tHOLE\tZONE\tLAYER\tDESCRIPTION")
			for _, p := range store.Presets {
				s := p.Settings
				fmt.Fprintf(tw, "%s\t%s %g\t%s\t%d\t%d\t%s\n", p.Name, s.GridType, s.GridSize,
					model.HoleSpec{Kind: s.HoleType, Size: s.HoleSize}.Describe(),
					s.HoleZoneLayer, s.HoleLayer, p.Description)
			}
			return tw.Flush()
		},
	}
}

func newPresetsSaveCmd(g *globals) *cobra.Command {
	var (
		hf          holeFlags
		description string
	)
	cmd := &cobra.Command{
		Use:   "save NAME",
		Short: "Save the given hole flags as a preset",
		Long: `Save a preset built from the config defaults overridden by the given hole
flags. Saving under an existing name replaces that preset. Use --preset to
start from another preset.`,
		Example: `  fluxholes presets save fine --grid 2 --hole 0.3 --grid-type triangle
  fluxholes presets save fine-square --preset fine --hole-type square`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			hs, err := hf.settings(cmd, g, cfg)
			if err != nil {
				return err
			}
			store, err := project.LoadPresets(g.presetPath())
			if err != nil {
				return fmt.Errorf("failed to load presets: %w", err)
			}
			store.Put(model.NewHolePreset(args[0], description, hs))
			if err := project.SavePresets(g.presetPath(), store); err != nil {
				return fmt.Errorf("failed to save presets: %w", err)
			}
			printf(cmd.OutOrStdout(), "Preset %q saved\n", args[0])
			return nil
		},
	}
	hf.register(cmd)
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	return cmd
}

func newPresetsDeleteCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a preset by name or ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := project.LoadPresets(g.presetPath())
			if err != nil {
				return fmt.Errorf("failed to load presets: %w", err)
			}
			if !store.Remove(args[0]) {
				return fmt.Errorf("preset %q not found", args[0])
			}
			if err := project.SavePresets(g.presetPath(), store); err != nil {
				return fmt.Errorf("failed to save presets: %w", err)
			}
			printf(cmd.OutOrStdout(), "Preset %q deleted\n", args[0])
			return nil
		},
	}
}
