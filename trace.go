package buildopts

import (
	"encoding/json"
)

// Trace captures which layers hold a value for a path and what they hold.
type Trace struct {
	Path   string       `json:"path"`
	Layers []Provenance `json:"layers"`
}

// Provenance details how one layer contributed to a traced path.
type Provenance struct {
	Scope  Scope  `json:"scope"`
	Source string `json:"source,omitempty"`
	Path   string `json:"path"`
	Value  any    `json:"value,omitempty"`
	Found  bool   `json:"found"`
}

// Winner returns the strongest layer holding a value for the path.
func (t Trace) Winner() (Provenance, bool) {
	for _, layer := range t.Layers {
		if layer.Found {
			return layer, true
		}
	}
	return Provenance{}, false
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
