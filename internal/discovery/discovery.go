package discovery

import (
	"github.com/vulnpipe/vulnpipe/internal/models"
)

// LookPathFunc matches the signature of exec.LookPath.
type LookPathFunc func(file string) (string, error)

// Discoverer probes the local environment to find which scanner
// binaries are installed. The injectable lookup makes it fully testable.
type Discoverer struct {
	lookPath LookPathFunc
}

// New creates a Discoverer with the given lookup function.
func New(lookPath LookPathFunc) *Discoverer {
	return &Discoverer{lookPath: lookPath}
}

// ToolDiscovery describes what was found for a single tool.
type ToolDiscovery struct {
	Tool       models.ToolType `json:"tool"`
	Binary     string          `json:"binary"`
	BinaryPath string          `json:"binary_path,omitempty"`
	Available  bool            `json:"available"`
}

// DiscoveryPlan is the complete result of a discovery scan.
type DiscoveryPlan struct {
	Tools      []ToolDiscovery `json:"tools"`
	TotalFound int             `json:"total_found"`
}

// Discover checks which scanner binaries are installed. No network
// calls; a missing binary is not an error — the runner falls back to a
// mock envelope for it.
func (d *Discoverer) Discover() *DiscoveryPlan {
	plan := &DiscoveryPlan{}

	for toolType, info := range Registry {
		td := ToolDiscovery{
			Tool:   toolType,
			Binary: info.Binary,
		}

		if path, err := d.lookPath(info.Binary); err == nil {
			td.Available = true
			td.BinaryPath = path
		}

		plan.Tools = append(plan.Tools, td)
		if td.Available {
			plan.TotalFound++
		}
	}

	sortTools(plan.Tools)
	return plan
}

// AvailableTools returns only the tools whose binary was found.
func (p *DiscoveryPlan) AvailableTools() []ToolDiscovery {
	var available []ToolDiscovery
	for _, t := range p.Tools {
		if t.Available {
			available = append(available, t)
		}
	}
	return available
}

// sortTools sorts by tool type name for deterministic output.
func sortTools(tools []ToolDiscovery) {
	n := len(tools)
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			if string(tools[i].Tool) > string(tools[j].Tool) {
				tools[i], tools[j] = tools[j], tools[i]
			}
		}
	}
}
