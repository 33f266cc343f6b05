package discovery

import (
	"time"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

// ToolExecInfo describes how to invoke a scanner tool with safe,
// conservative flags.
type ToolExecInfo struct {
	Binary     string        // executable name (looked up in PATH)
	TargetFlag string        // flag preceding the target; empty means positional
	BaseArgs   []string      // default flags appended to every invocation
	Timeout    time.Duration // per-tool execution timeout
}

// Registry is the single source of truth for how to invoke each scanner.
var Registry = map[models.ToolType]ToolExecInfo{
	models.ToolNmap: {
		Binary:   "nmap",
		BaseArgs: []string{"-Pn", "--top-ports", "100"},
		Timeout:  60 * time.Second,
	},
	models.ToolNikto: {
		Binary:     "nikto",
		TargetFlag: "-h",
		Timeout:    120 * time.Second,
	},
	models.ToolNuclei: {
		Binary:     "nuclei",
		TargetFlag: "-u",
		BaseArgs:   []string{"-silent", "-jsonl"},
		Timeout:    45 * time.Second,
	},
	models.ToolWpscan: {
		Binary:     "wpscan",
		TargetFlag: "--url",
		BaseArgs:   []string{"--no-banner", "--format", "json"},
		Timeout:    90 * time.Second,
	},
	models.ToolSqlmap: {
		Binary:     "sqlmap",
		TargetFlag: "-u",
		BaseArgs:   []string{"--batch", "--risk=1", "--level=1", "--random-agent"},
		Timeout:    120 * time.Second,
	},
	models.ToolMedusa: {
		Binary:     "medusa",
		TargetFlag: "-h",
		Timeout:    120 * time.Second,
	},
}

// Args builds the full argument list for one invocation.
// Targetted tools get the target right after their target flag;
// positional tools get it after the base args.
func (i ToolExecInfo) Args(target string, extra []string) []string {
	var args []string
	if target != "" && i.TargetFlag != "" {
		args = append(args, i.TargetFlag, target)
	}
	args = append(args, i.BaseArgs...)
	if target != "" && i.TargetFlag == "" {
		args = append(args, target)
	}
	return append(args, extra...)
}
