package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/san-kum/mrac/internal/dynamo"
	"github.com/san-kum/mrac/internal/sim"
)

const (
	metadataFile = "metadata.json"
	ticksFile    = "ticks.csv"
)

// Columns of ticks.csv.
var Columns = []string{
	"time", "x", "y", "yaw",
	"ref_x", "ref_y", "ref_yaw",
	"fx", "fy", "tz",
	"dist_x", "dist_y", "dist_yaw",
	"drag0", "drag1", "drag2", "drag3", "drag4",
	"goal_distance", "active",
}

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string                  `json:"id"`
	Scenario   string                  `json:"scenario"`
	Timestamp  time.Time               `json:"timestamp"`
	Dt         float64                 `json:"dt"`
	Duration   float64                 `json:"duration"`
	Integrator string                  `json:"integrator"`
	Steps      int                     `json:"steps"`
	Waypoints  []sim.ScheduledWaypoint `json:"waypoints"`
	Metrics    map[string]float64      `json:"metrics"`
}

// Tick is one row of ticks.csv.
type Tick struct {
	Time         float64
	X, Y, Yaw    float64
	RefX, RefY   float64
	RefYaw       float64
	Wrench       [3]float64
	Disturbance  [3]float64
	Drag         [5]float64
	GoalDistance float64
	Active       bool
}

// TickFromSample flattens a simulation sample.
func TickFromSample(s sim.Sample) Tick {
	pose := s.Vehicle.Pose
	ref := s.Output.Reference
	return Tick{
		Time:         s.Time,
		X:            pose.Position.X,
		Y:            pose.Position.Y,
		Yaw:          pose.Heading(),
		RefX:         ref.Position.X,
		RefY:         ref.Position.Y,
		RefYaw:       dynamo.Yaw(ref.Orientation),
		Wrench:       s.Output.Wrench.Vector(),
		Disturbance:  s.Output.Estimates.Disturbance,
		Drag:         s.Output.Estimates.Drag,
		GoalDistance: s.GoalDistance(),
		Active:       s.Output.Active,
	}
}

// Values returns the row in Columns order.
func (t Tick) Values() []float64 {
	active := 0.0
	if t.Active {
		active = 1
	}
	row := []float64{t.Time, t.X, t.Y, t.Yaw, t.RefX, t.RefY, t.RefYaw}
	row = append(row, t.Wrench[:]...)
	row = append(row, t.Disturbance[:]...)
	row = append(row, t.Drag[:]...)
	return append(row, t.GoalDistance, active)
}

func tickFromValues(v []float64) (Tick, error) {
	if len(v) != len(Columns) {
		return Tick{}, errors.Wrapf(dynamo.ErrDimensionMismatch, "tick row has %d fields, want %d", len(v), len(Columns))
	}
	t := Tick{
		Time: v[0], X: v[1], Y: v[2], Yaw: v[3],
		RefX: v[4], RefY: v[5], RefYaw: v[6],
		GoalDistance: v[18],
		Active:       v[19] != 0,
	}
	copy(t.Wrench[:], v[7:10])
	copy(t.Disturbance[:], v[10:13])
	copy(t.Drag[:], v[13:18])
	return t, nil
}

// Save writes a run directory with metadata.json and ticks.csv.
func (s *Store) Save(scenario, integrator string, cfg sim.Config, result *sim.Result) (string, error) {
	now := s.now()
	runID := fmt.Sprintf("%s_%d", scenario, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Scenario:   scenario,
		Timestamp:  now,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Integrator: integrator,
		Steps:      result.StepsTaken,
		Waypoints:  cfg.Waypoints,
		Metrics:    result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, ticksFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteTicksCSV(csvFile, result.Samples); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "run %s metadata", runID)
	}
	return &meta, nil
}

func (s *Store) LoadTicks(runID string) ([]Tick, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, ticksFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "run %s ticks", runID)
	}
	if len(records) < 2 {
		return []Tick{}, nil
	}

	ticks := make([]Tick, 0, len(records)-1)
	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "run %s row %d", runID, i+1)
			}
			vals[j] = v
		}
		tick, err := tickFromValues(vals)
		if err != nil {
			return nil, errors.Wrapf(err, "run %s row %d", runID, i+1)
		}
		ticks = append(ticks, tick)
	}
	return ticks, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
