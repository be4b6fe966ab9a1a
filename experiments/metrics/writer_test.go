package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nogo/config"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "leaf_parallel")
	require.NoError(t, err)

	t.Run("agent configs", func(t *testing.T) {
		cfg := config.Default()
		cfg.LeafParallel = 4

		require.NoError(t, w.WriteAgentConfigs([]config.Search{config.Default(), cfg}))

		out, err := os.ReadFile(filepath.Join(w.Dir(), "agent_configs.yaml"))
		require.NoError(t, err)
		require.Contains(t, string(out), "leaf_parallel: 4")
	})

	t.Run("game records", func(t *testing.T) {
		start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		records := []GameRecord{{
			ID:      1,
			MatchUp: 0,
			GameMetric: GameMetric{
				Black: "a", White: "b", Winner: "white",
				StartTime: start, EndTime: start.Add(time.Second), Duration: time.Second,
				TotalMoves: 12,
			},
		}}

		require.NoError(t, w.WriteGameRecords(records))

		rows := readCSV(t, filepath.Join(w.Dir(), "game_records.csv"))
		require.Len(t, rows, 2, "Header and one record")
		require.Equal(t, "id", rows[0][0])
		require.Equal(t, []string{"1", "0", "a", "b", "white", "12", "2024-01-02T03:04:05Z", "2024-01-02T03:04:06Z", "1s"}, rows[1])
	})

	t.Run("move records", func(t *testing.T) {
		records := []MoveRecord{
			{Game: 1, MoveMetric: MoveMetric{Step: 1, Side: "black", SearchMetric: SearchMetric{Iterations: 100, StopReason: StopCount, IsTreeReset: true}}},
			{Game: 1, MoveMetric: MoveMetric{Step: 2, Side: "white", SearchMetric: SearchMetric{Iterations: 7, StopReason: StopEarly}}},
		}

		require.NoError(t, w.WriteMoveRecords(records))

		rows := readCSV(t, filepath.Join(w.Dir(), "move_records.csv"))
		require.Len(t, rows, 3)
		require.Equal(t, "100", rows[1][7])
		require.Equal(t, "count", rows[1][11])
		require.Equal(t, "true", rows[1][12])
		require.Equal(t, "early", rows[2][11])
	})
}

func TestCollector(t *testing.T) {
	t.Run("counts since start", func(t *testing.T) {
		c := NewCollector()
		c.AddIteration()
		c.Start(4, time.Second)
		c.AddIteration()
		c.AddIteration()
		c.AddRollouts(4)
		c.AddUnstablePass()
		c.SetTreeReset(true)

		m := c.Complete(time.Minute, 9)

		require.Equal(t, 2, m.Iterations, "Counters should restart on Start")
		require.Equal(t, 4, m.Rollouts)
		require.Equal(t, 1, m.UnstablePasses)
		require.Equal(t, 4, m.LeafParallel)
		require.Equal(t, time.Second, m.ThinkingTime)
		require.Equal(t, time.Minute, m.RemainingTime)
		require.Equal(t, 9, m.TreeSize)
		require.True(t, m.IsTreeReset)
	})

	t.Run("first stop reason wins", func(t *testing.T) {
		c := NewCollector()
		c.Start(1, 0)
		c.Stop(StopEarly)
		c.Stop(StopCount)

		require.Equal(t, StopEarly, c.Complete(0, 1).StopReason)
	})

	t.Run("no stop reason", func(t *testing.T) {
		c := NewCollector()
		c.Start(1, 0)

		require.Equal(t, StopNone, c.Complete(0, 1).StopReason)
	})

	t.Run("dummy", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(1, time.Second)
		c.AddIteration()

		require.Equal(t, SearchMetric{}, c.Complete(time.Second, 3))
	})
}
