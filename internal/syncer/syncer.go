// Package syncer streams row data between two sessions in bounded-memory
// batches. Tables are processed strictly sequentially; within a table the
// engine reads until a batch is full, flushes it, then resumes reading.
package syncer

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"db-mirror/internal/provider"
	"db-mirror/internal/schema"
)

type Mode int

const (
	ModeFull Mode = iota
	ModeAppend
)

func (m Mode) String() string {
	if m == ModeAppend {
		return "append"
	}
	return "full"
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "full":
		return ModeFull, nil
	case "append":
		return ModeAppend, nil
	default:
		return ModeFull, fmt.Errorf("unknown sync mode %q (want full or append)", s)
	}
}

const DefaultBatchSize = 5000

type Options struct {
	Mode      Mode
	BatchSize int      // non-positive values are clamped to DefaultBatchSize
	Upsert    bool     // reconcile instead of blind insert; needs the capability
	Tables    []string // optional name filter on the intersection
}

// Progress is an immutable snapshot emitted after every batch flush and
// once more at each table completion, synchronously and in flush order.
type Progress struct {
	Table           string
	Mode            Mode
	RowsSynced      int64 // cumulative for this table
	TablesCompleted int
	TablesTotal     int
}

type ProgressFunc func(Progress)

// TableResult is the per-table summary for the final report.
type TableResult struct {
	Table    string
	Strategy string
	Rows     int64
	Batches  int
	Duration time.Duration
}

// Sync copies row data for every table present on both sides, matched by
// case-insensitive (schema, table) name only. Column-level mismatches are
// not reconciled here; a prior migration apply is expected to have closed
// the gaps. Any read or write failure aborts the whole operation; batches
// already flushed stay committed.
func Sync(ctx context.Context, source, target provider.Session,
	sourceSchema, targetSchema *schema.Database, opts Options, onProgress ProgressFunc) ([]TableResult, error) {

	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if opts.Upsert && !target.Capabilities().Upsert {
		return nil, fmt.Errorf("upsert requested: %w", provider.ErrUpsertUnsupported)
	}

	pairs := matchTables(sourceSchema, targetSchema, opts.Tables)
	results := make([]TableResult, 0, len(pairs))

	completed := 0
	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("sync cancelled before %s: %w", p.src.QualifiedName(), err)
		}
		res, err := syncTable(ctx, source, target, p, opts, batchSize, completed, len(pairs), onProgress)
		if err != nil {
			return results, err
		}
		completed++
		results = append(results, res)
	}
	return results, nil
}

type tablePair struct {
	src *schema.Table
	tgt *schema.Table
}

func matchTables(sourceSchema, targetSchema *schema.Database, filter []string) []tablePair {
	wanted := make(map[string]bool, len(filter))
	for _, name := range filter {
		wanted[strings.ToLower(name)] = true
	}

	var pairs []tablePair
	for _, src := range sourceSchema.Tables {
		tgt := targetSchema.FindTable(src.Schema, src.Name)
		if tgt == nil {
			continue
		}
		if len(wanted) > 0 &&
			!wanted[strings.ToLower(src.Name)] &&
			!wanted[strings.ToLower(src.QualifiedName())] {
			continue
		}
		pairs = append(pairs, tablePair{src: src, tgt: tgt})
	}
	return pairs
}

func syncTable(ctx context.Context, source, target provider.Session, p tablePair,
	opts Options, batchSize, completed, total int, onProgress ProgressFunc) (TableResult, error) {

	name := p.src.QualifiedName()
	start := time.Now()
	res := TableResult{Table: name, Strategy: strategyName(target, opts)}

	if opts.Mode == ModeFull {
		// Soft degrade: a target without truncate support keeps its rows
		// and the insert pass may duplicate them. Deliberate asymmetry
		// with the upsert capability check.
		if target.Capabilities().Truncate {
			if err := target.Truncate(ctx, p.tgt); err != nil {
				return res, fmt.Errorf("sync write failed on %s: %w", name, err)
			}
		}
	}

	var keyColumns []string
	if opts.Upsert {
		keyColumns = upsertKey(p.tgt)
	}

	reader, err := source.ReadTable(ctx, p.src)
	if err != nil {
		return res, fmt.Errorf("sync read failed on %s: %w", name, err)
	}
	defer reader.Close()

	buf := make([]schema.Row, 0, batchSize)

	flush := func() error {
		if len(buf) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("sync cancelled on %s: %w", name, err)
		}
		if opts.Upsert {
			// Row-at-a-time reconciliation; slower than the bulk path,
			// traded for per-row probe correctness.
			for _, row := range buf {
				if err := ctx.Err(); err != nil {
					return fmt.Errorf("sync cancelled on %s: %w", name, err)
				}
				if err := target.Upsert(ctx, p.tgt, row, keyColumns); err != nil {
					return fmt.Errorf("sync write failed on %s: %w", name, err)
				}
			}
		} else {
			if err := target.InsertBatch(ctx, p.tgt, buf); err != nil {
				return fmt.Errorf("sync write failed on %s: %w", name, err)
			}
		}
		res.Rows += int64(len(buf))
		res.Batches++
		buf = buf[:0]
		emit(onProgress, Progress{
			Table: name, Mode: opts.Mode, RowsSynced: res.Rows,
			TablesCompleted: completed, TablesTotal: total,
		})
		return nil
	}

	for {
		row, err := reader.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, fmt.Errorf("sync read failed on %s: %w", name, err)
		}
		buf = append(buf, row)
		if len(buf) >= batchSize {
			if err := flush(); err != nil {
				return res, err
			}
		}
	}
	if err := flush(); err != nil {
		return res, err
	}

	res.Duration = time.Since(start)
	emit(onProgress, Progress{
		Table: name, Mode: opts.Mode, RowsSynced: res.Rows,
		TablesCompleted: completed + 1, TablesTotal: total,
	})
	return res, nil
}

// upsertKey picks the reconciliation key for a table: declared primary key
// columns, else the first identity column, else none (full-row matching).
func upsertKey(t *schema.Table) []string {
	if t.PrimaryKey != nil {
		return t.PrimaryKey.Columns()
	}
	if id := t.IdentityColumn(); id != nil {
		return []string{id.Name}
	}
	return nil
}

func strategyName(target provider.Session, opts Options) string {
	if opts.Upsert {
		return "upsert"
	}
	if opts.Mode == ModeFull && target.Capabilities().Truncate {
		return "truncate+insert"
	}
	return "insert"
}

func emit(fn ProgressFunc, p Progress) {
	if fn != nil {
		fn(p)
	}
}
