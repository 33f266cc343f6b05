package storage

import (
	"path/filepath"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

// Run directory layout:
//
//	<base>/<host>/<run-id>/
//	  run_meta.json
//	  proof_of_control.txt
//	  generated/tools/<tool>.json
//	  reports/final_report.json
//	  reports/final_report.txt
//	  reports/pocs.json
//	  reports/pocs_compact.json
//
// These paths are a contract consumed by the dashboard boundary; only
// the names below may be used to address run artifacts.
const (
	GeneratedToolsSubdir = "generated/tools"
	ReportsSubdir        = "reports"

	RunMetaFile         = "run_meta.json"
	ProofFile           = "proof_of_control.txt"
	FinalReportFile     = "final_report.json"
	FinalReportTextFile = "final_report.txt"
	PoCsFile            = "pocs.json"
	CompactPoCsFile     = "pocs_compact.json"

	// Enriched report variants produced by an external PoC runner; the
	// synthesizer prefers them over the base report when present.
	ReportWithPoCsMapFile = "final_report_with_pocs_map.json"
	ReportWithPoCsFile    = "final_report_with_pocs.json"
)

// GeneratedToolsDir returns the envelope checkpoint directory of a run.
func GeneratedToolsDir(runDir string) string {
	return filepath.Join(runDir, filepath.FromSlash(GeneratedToolsSubdir))
}

// ToolEnvelopePath returns the checkpoint path for one tool's envelope.
func ToolEnvelopePath(runDir string, tool models.ToolType) string {
	return filepath.Join(GeneratedToolsDir(runDir), string(tool)+".json")
}

// ReportsDir returns the reports directory of a run.
func ReportsDir(runDir string) string {
	return filepath.Join(runDir, ReportsSubdir)
}

// FinalReportPath returns the structured report path of a run.
func FinalReportPath(runDir string) string {
	return filepath.Join(ReportsDir(runDir), FinalReportFile)
}

// FinalReportTextPath returns the human-readable report path of a run.
func FinalReportTextPath(runDir string) string {
	return filepath.Join(ReportsDir(runDir), FinalReportTextFile)
}

// PoCsPath returns the full PoC list path of a run.
func PoCsPath(runDir string) string {
	return filepath.Join(ReportsDir(runDir), PoCsFile)
}

// CompactPoCsPath returns the compacted PoC path of a run.
func CompactPoCsPath(runDir string) string {
	return filepath.Join(ReportsDir(runDir), CompactPoCsFile)
}

// ProofPath returns the proof-of-control token path of a run.
func ProofPath(runDir string) string {
	return filepath.Join(runDir, ProofFile)
}

// RunMetaPath returns the run metadata path of a run.
func RunMetaPath(runDir string) string {
	return filepath.Join(runDir, RunMetaFile)
}
