package diagnostics

import (
	"encoding/json"
	"errors"
	"sort"
)

// Pos is a minimal source position, supplied by the HLIR/SSA layers. It is
// intentionally decoupled from any particular front end's scanner type.
type Pos struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// Report is the canonical structured diagnostic emitted by every pipeline
// phase. Phases push Reports into a Sink rather than formatting or printing
// directly; rendering is an external collaborator's job (§6).
type Report struct {
	Schema    string         `json:"schema"`
	Code      string         `json:"code"`
	Phase     string         `json:"phase"`
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	Node      *Pos           `json:"node,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	Note      string         `json:"note,omitempty"`
	Underline string         `json:"underline,omitempty"`
}

const schemaVersion = "cthulhu.diagnostic/v1"

// New builds a Report with the schema field pre-filled.
func New(code, phase string, level Level, message string) Report {
	return Report{
		Schema:  schemaVersion,
		Code:    code,
		Phase:   phase,
		Level:   level,
		Message: message,
	}
}

// At attaches a source position, returning the modified Report for chaining.
func (r Report) At(pos Pos) Report {
	r.Node = &pos
	return r
}

// WithData attaches structured data, returning the modified Report.
func (r Report) WithData(data map[string]any) Report {
	r.Data = data
	return r
}

// WithNote attaches a trailing note, returning the modified Report.
func (r Report) WithNote(note string) Report {
	r.Note = note
	return r
}

// ReportError wraps a Report as a Go error so it survives errors.As
// unwrapping through ordinary error-returning call chains.
type ReportError struct {
	Rep Report
}

func (e *ReportError) Error() string {
	return e.Rep.Code + ": " + e.Rep.Message
}

// WrapReport wraps a Report as an error.
func WrapReport(r Report) error {
	return &ReportError{Rep: r}
}

// AsReport extracts a Report from an error chain, if present.
func AsReport(err error) (Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return Report{}, false
}

// ToJSON renders the report with deterministically sorted Data keys.
func (r Report) ToJSON(indent bool) (string, error) {
	sorted := sortedReport(r)
	var data []byte
	var err error
	if indent {
		data, err = json.MarshalIndent(sorted, "", "  ")
	} else {
		data, err = json.Marshal(sorted)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// sortedReport returns a copy of r with its Data map copied key by key in
// sorted order. A Go map keeps no order, so the sorted key order in
// ToJSON's output comes from encoding/json, which marshals map keys sorted.
func sortedReport(r Report) Report {
	if r.Data == nil {
		return r
	}
	keys := make([]string, 0, len(r.Data))
	for k := range r.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make(map[string]any, len(keys))
	for _, k := range keys {
		ordered[k] = r.Data[k]
	}
	r.Data = ordered
	return r
}

// NewInternal builds an Internal-severity report for a broken compiler
// invariant: unexpected HLIR kind, missing type, or malformed operand.
func NewInternal(phase, code, message string) Report {
	return New(code, phase, Internal, message)
}
