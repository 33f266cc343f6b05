package models

// Envelope is the immutable output of one tool invocation against one
// target. It is always JSON-serializable and self-describing: the tool
// name is embedded in the meta block. Adapters write it once under
// generated/tools/<tool>.json and later stages only read it.
type Envelope struct {
	Meta           EnvelopeMeta `json:"meta"`
	Result         *ToolResult  `json:"result,omitempty"`
	ParsedFindings []Finding    `json:"parsed_findings,omitempty"`
	OutputFile     string       `json:"output_file,omitempty"`
}

// EnvelopeMeta identifies the tool and how its execution ended.
type EnvelopeMeta struct {
	Tool   ToolType   `json:"tool"`
	Status ExecStatus `json:"status"`
	Target string     `json:"target,omitempty"`
}

// ToolResult is the tool-specific payload. Exactly which fields are
// populated depends on the tool and on whether the adapter produced
// structured output; the parser classifies the populated shape into a
// payload variant before normalizing.
type ToolResult struct {
	Cmd    []string `json:"cmd,omitempty"`
	RC     *int     `json:"rc,omitempty"`
	Stdout string   `json:"stdout,omitempty"`
	Stderr string   `json:"stderr,omitempty"`
	Target string   `json:"target,omitempty"`
	Note   string   `json:"note,omitempty"`

	// Adapter-pre-normalized findings, highest priority source.
	ParsedFindings []Finding `json:"parsed_findings,omitempty"`

	// Structured shapes, one per tool family.
	Hosts           []NmapHost   `json:"hosts,omitempty"`
	Items           []NiktoItem  `json:"items,omitempty"`
	Matches         []NucleiHit  `json:"matches,omitempty"`
	Vulnerable      []WPVuln     `json:"vulnerable,omitempty"`
	Vulnerabilities []SqlmapVuln `json:"vulnerabilities,omitempty"`
}

// NmapHost mirrors the host list an nmap adapter emits.
type NmapHost struct {
	Address string     `json:"address"`
	Ports   []NmapPort `json:"ports,omitempty"`
}

// NmapPort is one scanned port; only state=="open" ports normalize
// into findings.
type NmapPort struct {
	Port    int    `json:"port"`
	State   string `json:"state"`
	Service string `json:"service,omitempty"`
}

// NiktoItem is one structured nikto issue.
type NiktoItem struct {
	Host        string `json:"host,omitempty"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description,omitempty"`
	Msg         string `json:"msg,omitempty"`
	Severity    string `json:"severity,omitempty"`
	OSVDB       string `json:"osvdb,omitempty"`
}

// NucleiHit is one structured nuclei match (also the shape of one
// JSON-lines stdout record).
type NucleiHit struct {
	TemplateID string     `json:"template-id,omitempty"`
	Host       string     `json:"host,omitempty"`
	MatchedAt  string     `json:"matched-at,omitempty"`
	Matcher    string     `json:"matcher-name,omitempty"`
	Info       NucleiInfo `json:"info"`
}

// NucleiInfo carries template metadata inside a nuclei record.
type NucleiInfo struct {
	Name     string `json:"name,omitempty"`
	Severity string `json:"severity,omitempty"`
}

// WPVuln is one wpscan vulnerability entry.
type WPVuln struct {
	Type      string `json:"type,omitempty"`
	Name      string `json:"name,omitempty"`
	Title     string `json:"title,omitempty"`
	Severity  string `json:"severity,omitempty"`
	Reference string `json:"reference,omitempty"`
	Target    string `json:"target,omitempty"`
}

// SqlmapVuln is one sqlmap injection point.
type SqlmapVuln struct {
	URL        string  `json:"url,omitempty"`
	Target     string  `json:"target,omitempty"`
	Parameter  string  `json:"parameter,omitempty"`
	Payload    string  `json:"payload,omitempty"`
	Evidence   string  `json:"evidence,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}

// PreParsed returns adapter-supplied findings from either the envelope
// top level or the result block, whichever is populated.
func (e *Envelope) PreParsed() []Finding {
	if len(e.ParsedFindings) > 0 {
		return e.ParsedFindings
	}
	if e.Result != nil && len(e.Result.ParsedFindings) > 0 {
		return e.Result.ParsedFindings
	}
	return nil
}

// Stdout returns raw process output from the result block.
func (e *Envelope) Stdout() string {
	if e.Result == nil {
		return ""
	}
	return e.Result.Stdout
}

// TargetHint returns the best target the envelope knows about.
func (e *Envelope) TargetHint() string {
	if e.Result != nil && e.Result.Target != "" {
		return e.Result.Target
	}
	return e.Meta.Target
}
