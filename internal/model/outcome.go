package model

// Status is the final verdict vocabulary for an audited citation.
type Status string

const (
	StatusReal       Status = "REAL"        // Record exists and the claim matches its content
	StatusFake       Status = "FAKE"        // No trace of the work anywhere
	StatusMismatch   Status = "MISMATCH"    // Work exists but is about something else entirely
	StatusSuspicious Status = "SUSPICIOUS"  // Topic matches but the claim invents specifics
	StatusUnverified Status = "UNVERIFIED"  // Not enough evidence to judge either way
	StatusMinorError Status = "MINOR_ERROR" // Real, but cited with a wrong year
	StatusError      Status = "ERROR"       // Internal failure while auditing this claim
)

// ConsistencyVerdict is produced by the consistency judge when a
// bibliographic record with an abstract was found.
type ConsistencyVerdict struct {
	Status     Status  `json:"status"`
	Confidence float64 `json:"confidence"` // 0.0 - 1.0
	Reason     string  `json:"reason"`
}

// FallbackVerdict is produced by the web-search fallback judge when no
// source database had a matching record.
type FallbackVerdict struct {
	Verdict    string  `json:"verdict"` // REAL | FAKE | MISMATCH | UNVERIFIED
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	PaperInfo  string  `json:"actual_paper_info,omitempty"`
}

// AuditOutcome is the final per-claim result returned to the caller.
// Created once at the end of a claim's pipeline and never mutated.
type AuditOutcome struct {
	CitationText string                 `json:"citation_text"`
	Status       Status                 `json:"status"`
	Source       string                 `json:"source"` // Collaborator that produced the verdict
	Confidence   float64                `json:"confidence"`
	Metadata     map[string]interface{} `json:"metadata"`
	Message      string                 `json:"message"`
}
