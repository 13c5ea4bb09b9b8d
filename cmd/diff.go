package cmd

import (
	"fmt"

	"db-mirror/internal/diff"
	"db-mirror/internal/migrate"

	"github.com/spf13/cobra"
)

var advise bool

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare source and target schemas and show the migration plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		source, target, err := openPair()
		if err != nil {
			return err
		}
		defer source.Close()
		defer target.Close()

		log.Info("Introspecting source schema...")
		srcSchema, err := source.Introspect(ctx)
		if err != nil {
			return err
		}
		log.Info("Introspecting target schema...")
		tgtSchema, err := target.Introspect(ctx)
		if err != nil {
			return err
		}

		result := diff.Diff(srcSchema, tgtSchema, target)
		if advise {
			migrate.Annotate(ctx, migrate.StaticAdvisor{}, result.Plan)
		}

		if !result.HasDifferences() {
			fmt.Println("✓ Schemas are in sync. Nothing to do.")
			return nil
		}

		fmt.Printf("\n🔍 Differences (%d tables affected):\n", len(result.Differences))
		for _, d := range result.Differences {
			switch {
			case d.IsMissingInTarget:
				fmt.Printf("  [+] %s: missing in target\n", d.QualifiedName())
			case d.IsExtraInTarget:
				fmt.Printf("  [?] %s: exists only in target (no action)\n", d.QualifiedName())
			default:
				fmt.Printf("  [~] %s:\n", d.QualifiedName())
				for _, c := range d.MissingColumns {
					fmt.Printf("      + column %s missing in target\n", c)
				}
				for _, c := range d.ExtraColumns {
					fmt.Printf("      ? column %s exists only in target (no action)\n", c)
				}
				for _, m := range d.Mismatches {
					if m.TypeDiffers {
						fmt.Printf("      ! column %s: type %s vs %s (not auto-corrected)\n",
							m.Column, m.SourceType, m.TargetType)
					}
					if m.NullabilityDiffers {
						fmt.Printf("      ! column %s: nullable %v vs %v (not auto-corrected)\n",
							m.Column, m.SourceNullable, m.TargetNullable)
					}
				}
			}
		}

		if result.Plan.Empty() {
			fmt.Println("\nNo migration steps generated (differences are informational only).")
			return nil
		}

		fmt.Printf("\n📋 Migration Plan (%d steps):\n", result.Plan.Len())
		for i, step := range result.Plan.Steps() {
			fmt.Printf("[%02d] [%s] %s %s\n     %s\n", i+1, step.Risk, step.Kind, step.QualifiedTable(), step.SQL)
			if step.AdvisoryReason != "" {
				fmt.Printf("     💡 %s\n", step.AdvisoryReason)
				if step.AdvisorySQL != "" {
					fmt.Printf("        suggested: %s\n", step.AdvisorySQL)
				}
			}
		}
		fmt.Println("\nRun 'db-mirror migrate' to apply this plan.")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(diffCmd)

	diffCmd.Flags().BoolVar(&advise, "advise", false, "annotate plan steps with advisory suggestions")
}
