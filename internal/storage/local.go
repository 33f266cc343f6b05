package storage

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/vulnpipe/vulnpipe/internal/models"
)

// LocalStorage manages the run-directory tree on the local filesystem.
type LocalStorage struct {
	baseDir string
}

// NewLocal creates a new local storage instance rooted at baseDir.
func NewLocal(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

// BaseDir returns the root of the run tree.
func (s *LocalStorage) BaseDir() string {
	return s.baseDir
}

// CreateRun allocates a fresh run directory for a target and returns
// its path. Run IDs are random; concurrent runs never collide.
func (s *LocalStorage) CreateRun(target string) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, HostDirName(target), runID)

	for _, dir := range []string{
		runDir,
		GeneratedToolsDir(runDir),
		ReportsDir(runDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create run directory: %w", err)
		}
	}

	return runDir, nil
}

// HostDirName derives a filesystem-safe directory name from a target
// host or URL.
func HostDirName(target string) string {
	host := target
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.TrimPrefix(host, "www.")
	replacer := strings.NewReplacer("/", "_", ":", "_", "\\", "_", " ", "_")
	host = replacer.Replace(host)
	if host == "" {
		host = "unknown"
	}
	return host
}

// SaveRunMeta persists run metadata at the run root.
func SaveRunMeta(runDir string, meta *models.RunMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run meta: %w", err)
	}
	if err := os.WriteFile(RunMetaPath(runDir), data, 0o644); err != nil {
		return fmt.Errorf("failed to write run meta: %w", err)
	}
	return nil
}

// LoadRunMeta reads run metadata back from the run root.
func LoadRunMeta(runDir string) (*models.RunMeta, error) {
	data, err := os.ReadFile(RunMetaPath(runDir))
	if err != nil {
		return nil, fmt.Errorf("failed to read run meta: %w", err)
	}
	var meta models.RunMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse run meta: %w", err)
	}
	return &meta, nil
}

// LoadReport reads the final report of a run.
func LoadReport(runDir string) (*models.Report, error) {
	return LoadReportFile(FinalReportPath(runDir))
}

// LoadReportFile reads a report from an explicit path.
func LoadReportFile(path string) (*models.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("report not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// RunInfo summarizes one completed run for listings.
type RunInfo struct {
	RunDir   string `json:"run_dir"`
	Host     string `json:"host"`
	RunID    string `json:"run_id"`
	Findings int    `json:"findings"`
	Started  string `json:"started,omitempty"`
}

// ListRuns scans the run tree for completed runs — directories holding
// reports/final_report.json — and returns them with per-run finding
// counts. Unreadable or half-written runs are skipped, not fatal.
func (s *LocalStorage) ListRuns() ([]RunInfo, error) {
	hosts, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read runs directory: %w", err)
	}

	var runs []RunInfo
	for _, hostEntry := range hosts {
		if !hostEntry.IsDir() {
			continue
		}
		hostDir := filepath.Join(s.baseDir, hostEntry.Name())

		runEntries, err := os.ReadDir(hostDir)
		if err != nil {
			continue
		}

		for _, runEntry := range runEntries {
			if !runEntry.IsDir() {
				continue
			}
			runDir := filepath.Join(hostDir, runEntry.Name())

			report, err := LoadReport(runDir)
			if err != nil {
				continue
			}

			info := RunInfo{
				RunDir:   runDir,
				Host:     hostEntry.Name(),
				RunID:    runEntry.Name(),
				Findings: len(report.Findings),
			}
			if !report.Meta.StartedAt.IsZero() {
				info.Started = report.Meta.StartedAt.Format("2006-01-02 15:04:05")
			}
			runs = append(runs, info)
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		if runs[i].Host != runs[j].Host {
			return runs[i].Host < runs[j].Host
		}
		return runs[i].Started < runs[j].Started
	})

	return runs, nil
}

// PreviousReport returns the most recent completed report for a host,
// excluding the given run directory. Used for trend comparison.
func (s *LocalStorage) PreviousReport(host, excludeRunDir string) (*models.Report, error) {
	runs, err := s.ListRuns()
	if err != nil {
		return nil, err
	}

	var latest *models.Report
	var latestStarted string
	for _, info := range runs {
		if info.Host != host || info.RunDir == excludeRunDir {
			continue
		}
		if latest != nil && info.Started <= latestStarted {
			continue
		}
		report, err := LoadReport(info.RunDir)
		if err != nil {
			continue
		}
		latest = report
		latestStarted = info.Started
	}

	if latest == nil {
		return nil, fmt.Errorf("no previous run found for host %s", host)
	}
	return latest, nil
}
