package formstate

import "encoding/json"

// Trace records how Old resolved a field across the layers it consulted.
type Trace struct {
	Field    string       `json:"field"`
	Resolved string       `json:"resolved"`
	Layers   []Provenance `json:"layers"`
}

// Provenance details what one layer held for the traced field.
type Provenance struct {
	Scope Scope `json:"scope"`
	Value any   `json:"value,omitempty"`
	Found bool  `json:"found"`
}

// ToJSON serialises the trace for logging or debugging endpoints.
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
