package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/pitchloop/internal/dynamo"
)

type ExportData struct {
	Run     RunMetadata               `json:"run"`
	Times   []Float                   `json:"times"`
	States  [][dynamo.NumStates]Float `json:"states"`
	Signals []ExportSignals           `json:"signals"`
}

type ExportSignals struct {
	FilterCoefficient [dynamo.NumChannels]Float `json:"filter_coefficient"`
	Output            [dynamo.NumChannels]Float `json:"output"`
}

// ExportJSON writes a run and its trace as one indented JSON document.
func ExportJSON(w io.Writer, meta *RunMetadata, tr *Trace) error {
	data := ExportData{
		Run:     *meta,
		Times:   floats(tr.Times),
		States:  make([][dynamo.NumStates]Float, len(tr.States)),
		Signals: make([]ExportSignals, len(tr.Signals)),
	}
	for i, x := range tr.States {
		for j, v := range x {
			data.States[i][j] = Float(v)
		}
	}
	for i, sig := range tr.Signals {
		for ch := range sig.FilterCoefficient {
			data.Signals[i].FilterCoefficient[ch] = Float(sig.FilterCoefficient[ch])
			data.Signals[i].Output[ch] = Float(sig.Output[ch])
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportJSONFile is ExportJSON into a new file at path.
func ExportJSONFile(path string, meta *RunMetadata, tr *Trace) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ExportJSON(file, meta, tr); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
