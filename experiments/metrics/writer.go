package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// AgentConfig describes one player of a simulation.
type AgentConfig struct {
	ID          int
	Kind        string // mcts, sampling, safe, better or random
	Goroutines  int
	Episodes    int
	Duration    time.Duration
	Exploration float64
	Temperature float64
}

type GameRecord struct {
	ID     int
	Agents []int // AgentConfig.ID per player
	GameMetric
}

type MoveRecord struct {
	Game int // GameRecord.ID
	MoveMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates a directory for one experiment under root, named by the
// experiment and the current timestamp.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
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

func (w *Writer) WriteAgentConfigs(configs []AgentConfig) error {
	header := []string{"id", "kind", "goroutines", "duration", "episodes", "exploration", "temperature"}
	rows := make([][]string, len(configs))
	for i, config := range configs {
		rows[i] = []string{
			strconv.Itoa(config.ID),
			config.Kind,
			strconv.Itoa(config.Goroutines),
			config.Duration.String(),
			strconv.Itoa(config.Episodes),
			strconv.FormatFloat(config.Exploration, 'f', -1, 64),
			strconv.FormatFloat(config.Temperature, 'f', -1, 64),
		}
	}
	return w.write("agent_configs.csv", header, rows)
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	header := []string{"id", "agents", "starting_player", "worms", "finished", "turns", "moves", "start_time", "end_time", "duration"}
	rows := make([][]string, len(records))
	for i, record := range records {
		agents := make([]string, len(record.Agents))
		worms := make([]string, len(record.Agents))
		for player, id := range record.Agents {
			agents[player] = strconv.Itoa(id)
			worms[player] = strconv.Itoa(record.WormCounts[player])
		}
		rows[i] = []string{
			strconv.Itoa(record.ID),
			strings.Join(agents, " "),
			strconv.Itoa(record.StartingPlayer),
			strings.Join(worms, " "),
			strconv.FormatBool(record.Finished),
			strconv.Itoa(record.Turns),
			strconv.Itoa(record.TotalMoves),
			record.StartTime.Format(time.RFC3339),
			record.EndTime.Format(time.RFC3339),
			record.Duration.String(),
		}
	}
	return w.write("game_records.csv", header, rows)
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	header := []string{"game", "step", "player", "action", "goroutines", "duration", "episodes", "rollouts", "states"}
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = []string{
			strconv.Itoa(record.Game),
			strconv.Itoa(record.Step),
			strconv.Itoa(record.Player),
			record.Action,
			strconv.Itoa(record.Goroutines),
			record.Duration.String(),
			strconv.Itoa(record.Episodes),
			strconv.Itoa(record.Rollouts),
			strconv.Itoa(record.States),
		}
	}
	return w.write("move_records.csv", header, rows)
}

// WriteFinishes stores how often each player finished in each place.
func (w *Writer) WriteFinishes(finishes [][]int) error {
	header := []string{"player"}
	for place := range finishes {
		header = append(header, "place_"+strconv.Itoa(place+1))
	}
	rows := make([][]string, len(finishes))
	for player, places := range finishes {
		row := []string{strconv.Itoa(player)}
		for _, count := range places {
			row = append(row, strconv.Itoa(count))
		}
		rows[player] = row
	}
	return w.write("finishes.csv", header, rows)
}

func (w *Writer) write(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	err = writer.WriteAll(rows)
	if err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}
