// Package trace records one row per game tick and writes the run as a
// zstd-compressed Parquet file.
package trace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/vovakirdan/snakepilot/internal/games/snake"
)

// Schema is stored in the file's key/value metadata.
const Schema = "snakepilot_tick_v1"

// SourceQueue marks a buffered move played without a provider call.
const SourceQueue = "queue"

// Row is a single tick of a run.
type Row struct {
	Tick    int64  `parquet:"tick"`
	HeadX   int32  `parquet:"head_x"`
	HeadY   int32  `parquet:"head_y"`
	FoodX   int32  `parquet:"food_x"`
	FoodY   int32  `parquet:"food_y"`
	Heading string `parquet:"heading,dict"`
	Length  int32  `parquet:"length"`
	Score   int32  `parquet:"score"`
	Source  string `parquet:"source,dict,optional"` // planner, queue, fallback, manual
	State   string `parquet:"state,dict"`
	Cause   string `parquet:"cause,dict,optional"`
}

// Recorder accumulates rows in memory. It is owned by the loop goroutine.
type Recorder struct {
	provider string
	rows     []Row
}

// NewRecorder returns a recorder for a run steered by provider.
func NewRecorder(provider string) *Recorder {
	return &Recorder{provider: provider}
}

// Record appends the state after a tick.
func (r *Recorder) Record(snap snake.Snapshot, source string) {
	r.rows = append(r.rows, Row{
		Tick:    int64(snap.Tick),
		HeadX:   int32(snap.Head.X),
		HeadY:   int32(snap.Head.Y),
		FoodX:   int32(snap.Food.X),
		FoodY:   int32(snap.Food.Y),
		Heading: snap.Heading.String(),
		Length:  int32(snap.Length()),
		Score:   int32(snap.Score),
		Source:  source,
		State:   string(snap.State),
		Cause:   string(snap.Cause),
	})
}

// Rows returns the recorded rows.
func (r *Recorder) Rows() []Row {
	return r.rows
}

// Len returns the number of recorded ticks.
func (r *Recorder) Len() int {
	return len(r.rows)
}

// WriteFile writes the recorded rows to outPath.
func (r *Recorder) WriteFile(outPath string) error {
	return Write(outPath, r.rows, r.provider)
}

// Write writes rows to outPath through a temp file renamed into place.
func Write(outPath string, rows []Row, provider string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("trace: create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", Schema),
		parquet.KeyValueMetadata("provider", provider),
	); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("trace: write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("trace: rename parquet: %w", err)
	}
	return nil
}

// Read loads every row of a trace file.
func Read(path string) ([]Row, error) {
	rows, err := parquet.ReadFile[Row](path)
	if err != nil {
		return nil, fmt.Errorf("trace: read %s: %w", path, err)
	}
	return rows, nil
}
