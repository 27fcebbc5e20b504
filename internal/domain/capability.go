package domain

import (
	"encoding/json"
	"time"
)

// Capability identifies which simulated execution persona a request targets.
type Capability string

const (
	CapabilityCOBOL     Capability = "cobol"
	CapabilityCCPP      Capability = "c_cpp"
	CapabilityJulia     Capability = "julia"
	CapabilityTelnet    Capability = "telnet"
	CapabilityRNT       Capability = "rnt"
	CapabilityFramework Capability = "framework"
	CapabilityChat      Capability = "chat"
)

// IsCompiler reports whether the capability renders a compile/execute reply.
func (c Capability) IsCompiler() bool {
	switch c {
	case CapabilityCOBOL, CapabilityCCPP, CapabilityJulia:
		return true
	}
	return false
}

// IsTerminal reports whether the capability renders a raw terminal transcript.
func (c Capability) IsTerminal() bool {
	return c == CapabilityTelnet || c == CapabilityRNT
}

// Interaction is one prior command/response pair carried in the rolling
// context window that primes future prompts.
type Interaction struct {
	Command  string `json:"command"`
	Response string `json:"response"`
}

// Artifact records the most recently generated image so a follow-up request
// can be routed as an edit instead of a fresh generation. It lives in session
// state, never in a package-level variable.
type Artifact struct {
	Prompt    string    `json:"prompt"`
	Path      string    `json:"path"`
	MIMEType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}

// SimulatedRequest is the tagged union handed to the prompt builder. It is
// immutable once built; one is constructed fresh per user action.
type SimulatedRequest struct {
	Capability Capability

	// Compiler-style fields.
	Source  string
	Dialect string

	// Terminal-style fields.
	Command string
	Host    string

	// Framework fields.
	Method string
	Route  string

	// Chat fields.
	Message   string
	WantImage bool

	// Session context threaded in by the owning surface.
	Context      []Interaction
	LastArtifact *Artifact
}

// ChartSpec is a chart-specification document (series data plus layout)
// consumed by an external charting surface.
type ChartSpec struct {
	Data   json.RawMessage `json:"data"`
	Layout json.RawMessage `json:"layout,omitempty"`
}

// FrameworkReply is the structured portion of a framework-capability reply,
// split so body and logs can be routed to different panes.
type FrameworkReply struct {
	ResponseBody string   `json:"responseBody"`
	ServerLogs   []string `json:"serverLogs"`
}

// Citation is a grounding reference returned alongside generated text.
type Citation struct {
	URI   string
	Title string
}

// SimulatedResponse is the normalized result replacing the raw service
// reply: primary text output plus optional structured payloads.
type SimulatedResponse struct {
	Output    string
	Chart     *ChartSpec
	Framework *FrameworkReply
	Citations []Citation
}

// SimulateResult is what the application layer hands back to the CLI.
// Exactly one of Output/ErrorMessage is meaningful; ErrorMessage is already
// localized for display and never contains raw technical detail.
type SimulateResult struct {
	RequestID    string
	Response     SimulatedResponse
	ChartPath    string
	ImagePath    string
	ModelUsed    string
	ErrorMessage string
	Category     ErrorCategory
}

// Failed reports whether the call ended in a classified failure.
func (r SimulateResult) Failed() bool {
	return r.ErrorMessage != ""
}
