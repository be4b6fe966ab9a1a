package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/samber/lo"

	"nogo/config"
)

type GameRecord struct {
	ID      int
	MatchUp int
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates dir/name/<timestamp> to hold the records of one experiment run.
func NewWriter(dir, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format(time.RFC3339)
	baseDir := filepath.Join(dir, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteAgentConfigs(configs []config.Search) error {
	out, err := config.Marshal(configs...)
	if err != nil {
		return err
	}
	path := filepath.Join(w.baseDir, "agent_configs.yaml")
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write agent configs: %w", err)
	}
	return nil
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "match_up", "black", "white", "winner", "moves", "start_time", "end_time", "duration"}
	rows := lo.Map(records, func(record GameRecord, _ int) []string {
		return []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.MatchUp),
			record.Black,
			record.White,
			record.Winner,
			strconv.Itoa(record.TotalMoves),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		}
	})
	return w.writeCSV("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{
		"game", "step", "side", "leaf_parallel", "thinking_time", "duration", "remaining_time",
		"iterations", "rollouts", "unstable_passes", "tree_size", "stop_reason", "is_tree_reset",
	}
	rows := lo.Map(records, func(record MoveRecord, _ int) []string {
		return []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			record.Side,
			strconv.Itoa(record.LeafParallel),
			record.ThinkingTime.String(),
			record.Duration.String(),
			record.RemainingTime.String(),
			strconv.Itoa(record.Iterations),
			strconv.Itoa(record.Rollouts),
			strconv.Itoa(record.UnstablePasses),
			strconv.Itoa(record.TreeSize),
			string(record.StopReason),
			strconv.FormatBool(record.IsTreeReset),
		}
	})
	return w.writeCSV("move_records.csv", header, rows)
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}
