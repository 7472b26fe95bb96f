package guard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/logger"
)

// Kind selects which advisory checks an invocation runs.
type Kind string

const (
	// KindCommand checks Bash command strings.
	KindCommand Kind = "command"
	// KindWrite checks destination file paths.
	KindWrite Kind = "write"
)

// OutputFormat selects the hook's stdout encoding.
type OutputFormat string

const (
	// FormatText prints one warning line per finding.
	FormatText OutputFormat = "text"
	// FormatJSON prints a structured hook response.
	FormatJSON OutputFormat = "json"
)

// hookEventName is the lifecycle event both guards register for.
const hookEventName = "PreToolUse"

var (
	commandTools = map[string]struct{}{
		"Bash": {},
	}
	writeTools = map[string]struct{}{
		"Write":        {},
		"Edit":         {},
		"MultiEdit":    {},
		"NotebookEdit": {},
	}
)

// DecodeInput reads a single hook payload from r.
func DecodeInput(r io.Reader) (*Input, error) {
	var payload Input
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "decoding hook payload")
	}
	return &payload, nil
}

// Evaluate runs the checks selected by kind against a decoded payload.
// Payloads for tools outside the guard's scope produce no findings, as do
// tool inputs that fail to decode: the guard has nothing useful to say about
// shapes it does not understand.
func (g *Guard) Evaluate(kind Kind, payload *Input) []Finding {
	switch kind {
	case KindCommand:
		if _, ok := commandTools[payload.ToolName]; !ok {
			return nil
		}
		var input CommandInput
		if err := json.Unmarshal(payload.ToolInput, &input); err != nil {
			return nil
		}
		return g.CheckCommand(input.Command)
	case KindWrite:
		if _, ok := writeTools[payload.ToolName]; !ok {
			return nil
		}
		var input WriteInput
		if err := json.Unmarshal(payload.ToolInput, &input); err != nil {
			return nil
		}
		return g.CheckWrite(input.FilePath)
	default:
		return nil
	}
}

// RunHook reads one PreToolUse payload from in, evaluates it, and writes
// advisory output to out. It never reports failure: the hook contract is
// warn-and-continue, so undecodable payloads are logged at debug level and
// swallowed, and the caller always exits zero.
func (g *Guard) RunHook(ctx context.Context, kind Kind, in io.Reader, out io.Writer, format OutputFormat) {
	log := logger.G(ctx).WithField("guard", string(kind))

	payload, err := DecodeInput(in)
	if err != nil {
		log.WithError(err).Debug("ignoring undecodable hook payload")
		return
	}

	findings := g.Evaluate(kind, payload)
	log.WithField("tool", payload.ToolName).WithField("findings", len(findings)).Debug("guard evaluated payload")

	if format == FormatJSON {
		writeJSON(ctx, out, findings)
		return
	}
	for _, finding := range findings {
		fmt.Fprintf(out, "⚠ %s\n", finding.Message)
	}
}

func writeJSON(ctx context.Context, out io.Writer, findings []Finding) {
	response := Output{
		HookSpecificOutput: &HookSpecificOutput{
			HookEventName:      hookEventName,
			PermissionDecision: "allow",
		},
	}
	if len(findings) > 0 {
		messages := make([]string, len(findings))
		for i, finding := range findings {
			messages[i] = finding.Message
		}
		joined := strings.Join(messages, "; ")
		response.HookSpecificOutput.PermissionDecisionReason = joined
		response.SystemMessage = "advisory: " + joined
	}

	if err := json.NewEncoder(out).Encode(response); err != nil {
		logger.G(ctx).WithError(err).Debug("writing hook response")
	}
}
