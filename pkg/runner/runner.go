// Package runner executes skill runs: it sends a prompt to the hosted model
// with a skill container and the code-execution tool attached, surfaces the
// response blocks through a handler, and reports token usage. Generated
// files are left in the response for the artifacts package to download.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"

	"github.com/skillet-ai/skillet/pkg/logger"
	"github.com/skillet-ai/skillet/pkg/skillsapi"
)

// Defaults for a run when the caller leaves them unset.
const (
	DefaultModel     = "claude-sonnet-4-5"
	DefaultMaxTokens = 4096
	DefaultVersion   = "latest"
)

// Request describes one skill run.
type Request struct {
	// SkillID is the remote skill to load into the container.
	SkillID string
	// Version of the skill, defaults to latest.
	Version string
	// Prompt is the user message.
	Prompt string
	// Model overrides the default model.
	Model string
	// MaxTokens overrides the default response budget.
	MaxTokens int64
	// AnthropicSkills are platform-bundled skills to load alongside the
	// custom one, e.g. xlsx or pptx.
	AnthropicSkills []string
}

// Usage is the token accounting of one run.
type Usage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens,omitempty"`
}

// Result is the outcome of a completed run.
type Result struct {
	Response   *anthropic.BetaMessage `json:"-"`
	MessageID  string                 `json:"message_id"`
	Model      string                 `json:"model"`
	StopReason string                 `json:"stop_reason"`
	Text       string                 `json:"text"`
	Usage      Usage                  `json:"usage"`
}

// Runner sends skill runs through the API client.
type Runner struct {
	client *skillsapi.Client
}

// New builds a Runner around an API client.
func New(client *skillsapi.Client) *Runner {
	return &Runner{client: client}
}

// containerSkill is one entry of the container skills list.
type containerSkill struct {
	Type    string `json:"type"`
	SkillID string `json:"skill_id"`
	Version string `json:"version"`
}

// Run sends the prompt with the skill container attached and feeds response
// blocks to the handler as they are processed.
func (r *Runner) Run(ctx context.Context, req Request, handler Handler) (*Result, error) {
	if req.SkillID == "" {
		return nil, errors.New("skill id is required")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("prompt is required")
	}
	if handler == nil {
		handler = &ConsoleHandler{Quiet: true}
	}

	model := req.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	version := req.Version
	if version == "" {
		version = DefaultVersion
	}

	skills := []containerSkill{{Type: "custom", SkillID: req.SkillID, Version: version}}
	for _, id := range req.AnthropicSkills {
		skills = append(skills, containerSkill{Type: "anthropic", SkillID: id, Version: DefaultVersion})
	}

	params := anthropic.BetaMessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.BetaMessageParam{
			anthropic.NewBetaUserMessage(anthropic.NewBetaTextBlock(req.Prompt)),
		},
		Betas: []anthropic.AnthropicBeta{
			anthropic.AnthropicBeta(skillsapi.BetaCodeExecution),
			anthropic.AnthropicBeta(skillsapi.BetaFilesAPI),
			anthropic.AnthropicBeta(skillsapi.BetaSkills),
		},
	}

	// The pinned SDK has no typed fields for the skills container or the
	// upgraded code-execution tool, so both are set on the raw request body.
	requestOpts := []option.RequestOption{
		option.WithJSONSet("container", map[string]any{"skills": skills}),
		option.WithJSONSet("tools", []map[string]string{
			{"type": "code_execution_20250825", "name": "code_execution"},
		}),
	}

	logger.G(ctx).
		WithField("skill_id", req.SkillID).
		WithField("version", version).
		WithField("model", model).
		Info("starting skill run")

	var response *anthropic.BetaMessage
	err := r.client.ExecuteWithRetry(ctx, func() error {
		var opErr error
		sdk := r.client.SDK()
		response, opErr = sdk.Beta.Messages.New(ctx, params, requestOpts...)
		return opErr
	})
	if err != nil {
		return nil, errors.Wrap(err, "sending skill run")
	}

	result := &Result{
		Response:   response,
		MessageID:  response.ID,
		Model:      string(response.Model),
		StopReason: string(response.StopReason),
		Usage: Usage{
			InputTokens:              response.Usage.InputTokens,
			OutputTokens:             response.Usage.OutputTokens,
			CacheCreationInputTokens: response.Usage.CacheCreationInputTokens,
			CacheReadInputTokens:     response.Usage.CacheReadInputTokens,
		},
	}

	var texts []string
	for _, block := range response.Content {
		switch block.Type {
		case "text":
			handler.HandleText(block.Text)
			texts = append(texts, block.Text)
		case "server_tool_use":
			name, input := serverToolUse(rawBlock(block))
			handler.HandleToolUse(name, input)
		case "bash_code_execution_tool_result", "code_execution_tool_result":
			handler.HandleToolResult("code_execution", codeResultSummary(rawBlock(block)))
		}
	}
	result.Text = strings.Join(texts, "\n\n")

	logger.G(ctx).
		WithField("message_id", result.MessageID).
		WithField("stop_reason", result.StopReason).
		WithField("input_tokens", result.Usage.InputTokens).
		WithField("output_tokens", result.Usage.OutputTokens).
		Debug("skill run completed")

	handler.HandleDone()
	return result, nil
}

// serverToolUse pulls the tool name and its input out of a server_tool_use
// block.
func serverToolUse(raw string) (string, string) {
	var payload struct {
		Name  string          `json:"name"`
		Input json.RawMessage `json:"input"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return "", ""
	}
	return payload.Name, string(payload.Input)
}

// codeResultSummary renders a code-execution result block as one line of
// output: stdout on success, the exit code and stderr otherwise.
func codeResultSummary(raw string) string {
	var payload struct {
		Content struct {
			Stdout     string `json:"stdout"`
			Stderr     string `json:"stderr"`
			ReturnCode int    `json:"return_code"`
		} `json:"content"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return ""
	}
	if payload.Content.ReturnCode != 0 {
		return fmt.Sprintf("exit %d: %s", payload.Content.ReturnCode, strings.TrimSpace(payload.Content.Stderr))
	}
	return strings.TrimSpace(payload.Content.Stdout)
}

// rawBlock recovers the block's JSON. Blocks decoded from the wire carry
// their raw bytes; hand-built ones fall back to marshaling.
func rawBlock(block anthropic.BetaContentBlockUnion) string {
	if raw := block.RawJSON(); raw != "" {
		return raw
	}
	data, err := json.Marshal(block)
	if err != nil {
		return ""
	}
	return string(data)
}
