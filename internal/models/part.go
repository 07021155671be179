// Package models defines the domain types for fontfix.
package models

// PartResult records what a pass did to one part.
type PartResult struct {
	Path    string `json:"path"`
	Pass    string `json:"pass"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

// Report collects the per-part results of one or more passes.
type Report struct {
	Root  string       `json:"root"`
	Parts []PartResult `json:"parts"`
}

// Add appends r to the report.
func (r *Report) Add(res ...PartResult) {
	r.Parts = append(r.Parts, res...)
}

// Changed returns the number of parts that were rewritten.
func (r *Report) Changed() int {
	n := 0
	for _, p := range r.Parts {
		if p.Changed {
			n++
		}
	}
	return n
}

// Failed returns the number of parts that could not be processed.
func (r *Report) Failed() int {
	n := 0
	for _, p := range r.Parts {
		if p.Error != "" {
			n++
		}
	}
	return n
}
