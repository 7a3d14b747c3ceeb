package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/mrac/internal/sim"
)

type ExportData struct {
	Scenario   string             `json:"scenario"`
	Integrator string             `json:"integrator"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Steps      int                `json:"steps"`
	Columns    []string           `json:"columns"`
	Ticks      [][]float64        `json:"ticks"`
	Metrics    map[string]float64 `json:"metrics"`
}

func NewExportData(scenario, integrator string, cfg sim.Config, ticks []Tick, metrics map[string]float64) ExportData {
	data := ExportData{
		Scenario:   scenario,
		Integrator: integrator,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Steps:      len(ticks),
		Columns:    Columns,
		Ticks:      make([][]float64, len(ticks)),
		Metrics:    metrics,
	}
	for i, t := range ticks {
		data.Ticks[i] = t.Values()
	}
	return data
}

func ExportJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteTicksCSV writes samples as ticks.csv rows with a header.
func WriteTicksCSV(w io.Writer, samples []sim.Sample) error {
	ticks := make([]Tick, len(samples))
	for i, s := range samples {
		ticks[i] = TickFromSample(s)
	}
	return WriteCSV(w, ticks)
}

func WriteCSV(w io.Writer, ticks []Tick) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	row := make([]string, len(Columns))
	for _, t := range ticks {
		for i, v := range t.Values() {
			row[i] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
