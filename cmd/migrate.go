package cmd

import (
	"fmt"

	"db-mirror/internal/diff"
	"db-mirror/internal/migrate"

	"github.com/spf13/cobra"
)

var migrateDryRun bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the additive migration plan to the target",
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
		if result.Plan.Empty() {
			fmt.Println("✓ Nothing to migrate.")
			return nil
		}

		if migrateDryRun {
			log.Info("[SIMULATION] Dry-Run Mode Active: No DDL will be executed.")
			for i, step := range result.Plan.Steps() {
				fmt.Printf("[%02d] %s\n", i+1, step.SQL)
			}
			return nil
		}

		log.Infof("Applying %d migration steps...", result.Plan.Len())
		for _, step := range result.Plan.Steps() {
			log.Debugf("step: %s", step.SQL)
		}
		applied, err := migrate.Apply(ctx, target, result.Plan)
		if err != nil {
			log.Errorf("Migration halted after %d/%d steps (applied steps remain applied).",
				applied, result.Plan.Len())
			return err
		}
		fmt.Printf("✓ Applied %d migration steps.\n", applied)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "print the plan SQL without executing it")
}
