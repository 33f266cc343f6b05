package models

import "time"

// PoC is a derived, read-only demonstration of a finding. The payload is
// always chosen from a fixed benign catalog per vulnerability class; a
// PoC never encodes an action that mutates the target.
type PoC struct {
	FindingType string     `json:"finding_type"`
	Target      string     `json:"target"`
	UsedURL     string     `json:"used_url"`
	Severity    int        `json:"severity"`
	Timestamp   *time.Time `json:"timestamp"`
	ProofURL    string     `json:"proof_url"`
	Method      string     `json:"method"`
	Payload     string     `json:"payload"`
	Curl        string     `json:"curl"`
	Note        string     `json:"note"`
	// Captured is filled by an external PoC runner, never by synthesis.
	Captured *Capture `json:"captured,omitempty"`
}

// Capture holds the observed response if a PoC was actually executed by
// an external runner.
type Capture struct {
	Status  *int   `json:"status"`
	Snippet string `json:"snippet,omitempty"`
}

// DedupKey identifies a PoC for compaction: proof URL first, target as
// fallback. Empty when neither is known.
func (p *PoC) DedupKey() string {
	if p.ProofURL != "" {
		return p.ProofURL
	}
	return p.Target
}

// CompactPoC is the dedup view of a PoC carrying only the fields needed
// for quick display.
type CompactPoC struct {
	ProofURL    string `json:"proof_url"`
	FindingType string `json:"finding_type"`
	Target      string `json:"target"`
	Status      *int   `json:"status"`
	Snippet     string `json:"snippet,omitempty"`
	Curl        string `json:"curl,omitempty"`
}

// CompactReport is the persisted shape of pocs_compact.json.
type CompactReport struct {
	Count int          `json:"count"`
	PoCs  []CompactPoC `json:"pocs"`
}
