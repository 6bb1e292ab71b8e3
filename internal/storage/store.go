package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/san-kum/pitchloop/internal/control"
	"github.com/san-kum/pitchloop/internal/dynamo"
	"github.com/san-kum/pitchloop/internal/sim"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
)

// traceHeader is the fixed column layout of trace.csv.
var traceHeader = []string{
	"time",
	"filter_a", "integrator_a", "filter_b", "integrator_b",
	"filter_coefficient_a", "filter_coefficient_b",
	"output_a", "output_b",
}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string                                       `json:"id"`
	Name      string                                       `json:"name"`
	Timestamp time.Time                                    `json:"timestamp"`
	StepSize  float64                                      `json:"step_size"`
	StopTime  float64                                      `json:"stop_time"`
	Steps     int                                          `json:"steps"`
	FinalTime float64                                      `json:"final_time"`
	Channels  [dynamo.NumChannels]control.ChannelConstants `json:"channels"`
	Fault     string                                       `json:"fault,omitempty"`
	Metrics   Metrics                                      `json:"metrics"`
}

// Trace is a recorded run read back from trace.csv.
type Trace struct {
	Times   []float64
	States  []dynamo.State
	Signals []control.Signals
}

// TraceOf views a run result as a trace.
func TraceOf(result *sim.Result) *Trace {
	return &Trace{Times: result.Times, States: result.States, Signals: result.Signals}
}

// Save writes the metadata and the recorded trace of a run under a new
// run directory and returns its ID. Steps and Metrics are filled from
// the result; a fault recorded on the result is kept as text.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.Metrics = Metrics(result.Metrics)
	if n := len(result.Times); n > 0 {
		meta.FinalTime = result.Times[n-1]
	}
	if result.Err != nil {
		meta.Fault = result.Err.Error()
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := writeRun(runDir, &meta, result); err != nil {
		// A partial run directory would show up in List as a broken run.
		os.RemoveAll(runDir)
		return "", errors.Wrapf(err, "save %s", meta.ID)
	}
	return meta.ID, nil
}

func writeRun(runDir string, meta *RunMetadata, result *sim.Result) error {
	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		metaFile.Close()
		return err
	}
	if err := metaFile.Close(); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, traceFile))
	if err != nil {
		return err
	}
	if err := writeTrace(csvFile, TraceOf(result)); err != nil {
		csvFile.Close()
		return errors.Wrap(err, "write trace")
	}
	return csvFile.Close()
}

func writeTrace(out io.Writer, tr *Trace) error {
	if len(tr.States) != len(tr.Times) || len(tr.Signals) != len(tr.Times) {
		return errors.Errorf("trace has %d times, %d states and %d signals", len(tr.Times), len(tr.States), len(tr.Signals))
	}
	w := csv.NewWriter(out)
	if err := w.Write(traceHeader); err != nil {
		return err
	}

	row := make([]string, len(traceHeader))
	for i := range tr.Times {
		row = row[:0]
		row = append(row, formatFloat(tr.Times[i]))
		for _, v := range tr.States[i] {
			row = append(row, formatFloat(v))
		}
		sig := tr.Signals[i]
		for _, v := range sig.FilterCoefficient {
			row = append(row, formatFloat(v))
		}
		for _, v := range sig.Output {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns every readable run, oldest first.
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
		return nil, errors.Wrapf(err, "decode metadata of %s", runID)
	}
	return &meta, nil
}

// LoadTrace reads the trace of a run back.
func (s *Store) LoadTrace(runID string) (*Trace, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(traceHeader)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "read trace of %s", runID)
	}

	tr := &Trace{}
	if len(records) < 2 {
		return tr, nil
	}
	for line, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "trace of %s line %d column %s", runID, line+2, traceHeader[j])
			}
			vals[j] = v
		}

		var x dynamo.State
		copy(x[:], vals[1:1+dynamo.NumStates])
		var sig control.Signals
		off := 1 + dynamo.NumStates
		copy(sig.FilterCoefficient[:], vals[off:off+dynamo.NumChannels])
		copy(sig.Output[:], vals[off+dynamo.NumChannels:])

		tr.Times = append(tr.Times, vals[0])
		tr.States = append(tr.States, x)
		tr.Signals = append(tr.Signals, sig)
	}
	return tr, nil
}

// Series extracts one column of the trace by its header name.
func (tr *Trace) Series(column string) ([]float64, error) {
	idx := -1
	for i, name := range traceHeader {
		if name == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, errors.Errorf("unknown column %q", column)
	}

	out := make([]float64, len(tr.Times))
	for i := range tr.Times {
		switch {
		case idx == 0:
			out[i] = tr.Times[i]
		case idx <= dynamo.NumStates:
			out[i] = tr.States[i][idx-1]
		case idx <= dynamo.NumStates+dynamo.NumChannels:
			out[i] = tr.Signals[i].FilterCoefficient[idx-1-dynamo.NumStates]
		default:
			out[i] = tr.Signals[i].Output[idx-1-dynamo.NumStates-dynamo.NumChannels]
		}
	}
	return out, nil
}

// Columns lists the trace columns accepted by Series.
func Columns() []string {
	return append([]string(nil), traceHeader...)
}
