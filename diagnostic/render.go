package diagnostic

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// WriteText renders diags as plain text, one diagnostic per paragraph: the
// primary message followed by its flattened secondary labels, each on its
// own indented line (the default renderer cmd/ifcanalyze uses).
func WriteText(w io.Writer, diags []Diagnostic) error {
	return WriteTextColor(w, diags, false)
}

// ANSI SGR codes used by WriteTextColor. Kept local rather than pulled from
// a terminal-color library: the teacher repo never imports one, and a
// handful of fixed escape sequences isn't worth a dependency (see DESIGN.md).
const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[31m"
	ansiDim   = "\x1b[2m"
)

// WriteTextColor renders like WriteText, but when color is true highlights
// the primary message in bold (red for InsecureFlow, the rule the CLI's
// --color flag exists to make stand out in a terminal) and dims each
// secondary-label line.
func WriteTextColor(w io.Writer, diags []Diagnostic, color bool) error {
	for i, d := range diags {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		head := fmt.Sprintf("%d: %s: %s", d.File, d.Kind, d.Summary())
		if color {
			style := ansiBold
			if d.Kind == InsecureFlow {
				style += ansiRed
			}
			head = style + head + ansiReset
		}
		if _, err := fmt.Fprintln(w, head); err != nil {
			return err
		}
		for _, sl := range Flatten(d.Backtrace) {
			line := fmt.Sprintf("    %d:%d: %s", sl.File, sl.Location.Line, sl.Message)
			if color {
				line = ansiDim + line + ansiReset
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// yamlSecondaryLabel and yamlDiagnostic are the wire shapes for the
// structured renderer: plain data, no behavior, matching the teacher's
// convention of separate export structs carrying yaml tags
// (inspector/info's document types).
type yamlSecondaryLabel struct {
	File    int    `yaml:"file"`
	Line    int    `yaml:"line"`
	Message string `yaml:"message"`
}

type yamlDiagnostic struct {
	Kind      string               `yaml:"kind"`
	File      int                  `yaml:"file"`
	Line      int                  `yaml:"line"`
	Message   string               `yaml:"message,omitempty"`
	FlowKind  string               `yaml:"flow_kind,omitempty"`
	SinkLabel string               `yaml:"sink_label,omitempty"`
	Labels    []yamlSecondaryLabel `yaml:"labels,omitempty"`
}

// WriteYAML renders diags in structured form for machine consumers.
func WriteYAML(w io.Writer, diags []Diagnostic) error {
	out := make([]yamlDiagnostic, 0, len(diags))
	for _, d := range diags {
		entry := yamlDiagnostic{Kind: d.Kind.String(), File: d.File, Line: d.Location.Line}
		if d.Kind == InsecureFlow {
			entry.FlowKind = d.FlowKind.String()
			entry.SinkLabel = d.SinkLabel.String()
		} else {
			entry.Message = d.Message
		}
		for _, sl := range Flatten(d.Backtrace) {
			entry.Labels = append(entry.Labels, yamlSecondaryLabel{File: sl.File, Line: sl.Location.Line, Message: sl.Message})
		}
		out = append(out, entry)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(out)
}
