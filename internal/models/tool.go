package models

// ToolType identifies an external scanner tool
type ToolType string

const (
	ToolNmap    ToolType = "nmap"
	ToolNikto   ToolType = "nikto"
	ToolNuclei  ToolType = "nuclei"
	ToolWpscan  ToolType = "wpscan"
	ToolSqlmap  ToolType = "sqlmap"
	ToolMedusa  ToolType = "medusa"
	ToolUnknown ToolType = "unknown"
)

// ToolInfo contains metadata about a supported tool
type ToolInfo struct {
	Name          string
	HasNormalizer bool
	// DefaultFindingType is used when an adapter-supplied finding
	// arrives without a type tag.
	DefaultFindingType string
}

// SupportedTools defines explicitly supported tools
var SupportedTools = map[ToolType]ToolInfo{
	ToolNmap: {
		Name:               "nmap",
		HasNormalizer:      true,
		DefaultFindingType: "nmap-vuln",
	},
	ToolNikto: {
		Name:               "nikto",
		HasNormalizer:      true,
		DefaultFindingType: "nikto-vuln",
	},
	ToolNuclei: {
		Name:               "nuclei",
		HasNormalizer:      true,
		DefaultFindingType: "nuclei-vuln",
	},
	ToolWpscan: {
		Name:               "wpscan",
		HasNormalizer:      true,
		DefaultFindingType: "wpscan-vuln",
	},
	ToolSqlmap: {
		Name:               "sqlmap",
		HasNormalizer:      true,
		DefaultFindingType: "sqlmap-vuln",
	},
	ToolMedusa: {
		Name:               "medusa",
		HasNormalizer:      false,
		DefaultFindingType: "medusa-vuln",
	},
}

// IsSupportedTool checks if a tool is explicitly supported
func IsSupportedTool(tool ToolType) bool {
	_, ok := SupportedTools[tool]
	return ok
}

// GetToolInfo returns information about a tool
func GetToolInfo(tool ToolType) (ToolInfo, bool) {
	info, ok := SupportedTools[tool]
	return info, ok
}

// ExecStatus describes how a tool invocation ended
type ExecStatus string

const (
	StatusRan           ExecStatus = "ran"
	StatusTimeout       ExecStatus = "timeout"
	StatusError         ExecStatus = "error"
	StatusMocked        ExecStatus = "mocked-no-binary"
	StatusMissingBinary ExecStatus = "adapter-missing-binary"
)
