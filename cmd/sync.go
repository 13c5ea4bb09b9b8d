package cmd

import (
	"fmt"
	"time"

	"db-mirror/internal/syncer"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	syncMode      string
	syncBatchSize int
	syncUpsert    bool
	syncDryRun    bool
	syncTables    []string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Stream row data from source to target in batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		mode, err := syncer.ParseMode(syncMode)
		if err != nil {
			return err
		}

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

		// Flag > Config > Default for the batch size.
		batchSize := viper.GetInt("settings.batch_size")
		if syncBatchSize > 0 {
			batchSize = syncBatchSize
		}

		// Table filter strategy: CLI flag wins, then config, then all.
		tables := syncTables
		if len(tables) == 0 {
			tables = viper.GetStringSlice("settings.tables")
		}

		opts := syncer.Options{
			Mode:      mode,
			BatchSize: batchSize,
			Upsert:    syncUpsert,
			Tables:    tables,
		}

		if syncDryRun {
			log.Info("[SIMULATION] Dry-Run Mode Active: No data will be written.")
			fmt.Printf("🔍 Sync Plan (mode=%s, batch=%d, upsert=%v):\n", mode, batchSize, syncUpsert)
			count := 0
			for _, t := range srcSchema.Tables {
				if tgtSchema.FindTable(t.Schema, t.Name) != nil {
					count++
					fmt.Printf("[%02d] %s\n", count, t.QualifiedName())
				}
			}
			if count == 0 {
				fmt.Println("No matching tables between source and target.")
			}
			return nil
		}

		log.Infof("Starting sync (mode=%s, batch=%d)...", mode, batchSize)
		start := time.Now()

		uiprogress.Start()
		bar := uiprogress.AddBar(100).AppendCompleted().PrependElapsed()
		var current string
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return fmt.Sprintf("%-24s", current)
		})

		results, err := syncer.Sync(ctx, source, target, srcSchema, tgtSchema, opts,
			func(p syncer.Progress) {
				current = fmt.Sprintf("%s (%d rows)", p.Table, p.RowsSynced)
				if p.TablesTotal > 0 {
					bar.Set(p.TablesCompleted * 100 / p.TablesTotal)
				}
			})

		uiprogress.Stop()

		elapsed := time.Since(start)

		fmt.Println("\n📊 Sync Report:")
		var total int64
		for i, r := range results {
			fmt.Printf("[✓] [%02d/%02d] %-24s : %d rows in %d batches (%s) - %s\n",
				i+1, len(results), r.Table, r.Rows, r.Batches, r.Duration.Round(time.Millisecond), r.Strategy)
			total += r.Rows
		}
		fmt.Println("--------------------------------------------------")
		fmt.Printf("Total Rows Synced: %d\n", total)

		if err != nil {
			log.Errorf("Sync aborted: %v (flushed batches remain committed)", err)
			return err
		}
		log.Infof("Sync Done! Time Elapsed: %s", elapsed)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncMode, "mode", "full", "sync mode: full (truncate+reload) or append")
	syncCmd.Flags().IntVar(&syncBatchSize, "batch-size", 0, "rows per batch flush (overrides config)")
	syncCmd.Flags().BoolVar(&syncUpsert, "upsert", false, "reconcile rows instead of blind insert (needs target support)")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "list matched tables without writing")
	syncCmd.Flags().StringSliceVarP(&syncTables, "tables", "t", []string{}, "Specific tables to sync (comma-separated)")

	viper.SetDefault("settings.batch_size", syncer.DefaultBatchSize)
}
