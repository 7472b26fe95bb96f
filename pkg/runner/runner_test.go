package runner

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillet-ai/skillet/pkg/config"
	"github.com/skillet-ai/skillet/pkg/skillsapi"
)

const runResponse = `{
	"id": "msg_run_01",
	"type": "message",
	"role": "assistant",
	"model": "claude-sonnet-4-5",
	"content": [
		{"type": "text", "text": "Creating the report now."},
		{"type": "server_tool_use", "id": "srvtoolu_01", "name": "bash_code_execution", "input": {"command": "python make_report.py"}},
		{
			"type": "bash_code_execution_tool_result",
			"tool_use_id": "srvtoolu_01",
			"content": {
				"type": "bash_code_execution_result",
				"stdout": "report written\n",
				"stderr": "",
				"return_code": 0,
				"content": [{"type": "code_execution_output", "file_id": "file_report"}]
			}
		},
		{"type": "text", "text": "Done. The report is attached."}
	],
	"stop_reason": "end_turn",
	"stop_sequence": null,
	"usage": {"input_tokens": 2100, "output_tokens": 350, "cache_creation_input_tokens": 0, "cache_read_input_tokens": 0}
}`

// capturedRequest is the slice of the request body the tests assert on.
type capturedRequest struct {
	Model     string `json:"model"`
	MaxTokens int64  `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
	Container struct {
		Skills []containerSkill `json:"skills"`
	} `json:"container"`
	Tools []map[string]string `json:"tools"`
}

func newTestRunner(t *testing.T, handler http.Handler) *Runner {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	client, err := skillsapi.New(
		skillsapi.WithRequestOptions(option.WithBaseURL(server.URL)),
		skillsapi.WithRetryConfig(config.RetryConfig{Attempts: 1}),
	)
	require.NoError(t, err)
	return New(client)
}

func TestRun(t *testing.T) {
	var captured capturedRequest
	var betas string

	r := newTestRunner(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		require.Equal(t, http.MethodPost, req.Method)
		require.Equal(t, "/v1/messages", req.URL.Path)
		betas = strings.Join(req.Header.Values("anthropic-beta"), ",")

		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(runResponse))
	}))

	collector := &StringCollectorHandler{Quiet: true}
	result, err := r.Run(context.Background(), Request{
		SkillID: "skill_abc",
		Prompt:  "Build a quarterly budget spreadsheet",
	}, collector)
	require.NoError(t, err)

	// Request shape: defaults applied, container and tool set.
	assert.Equal(t, DefaultModel, captured.Model)
	assert.Equal(t, int64(DefaultMaxTokens), captured.MaxTokens)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	require.Len(t, captured.Messages[0].Content, 1)
	assert.Equal(t, "Build a quarterly budget spreadsheet", captured.Messages[0].Content[0].Text)

	require.Len(t, captured.Container.Skills, 1)
	assert.Equal(t, containerSkill{Type: "custom", SkillID: "skill_abc", Version: "latest"}, captured.Container.Skills[0])

	require.Len(t, captured.Tools, 1)
	assert.Equal(t, "code_execution_20250825", captured.Tools[0]["type"])
	assert.Equal(t, "code_execution", captured.Tools[0]["name"])

	for _, beta := range []string{skillsapi.BetaCodeExecution, skillsapi.BetaFilesAPI, skillsapi.BetaSkills} {
		assert.Contains(t, betas, beta)
	}

	// Response surfaced through the result and the handler.
	assert.Equal(t, "msg_run_01", result.MessageID)
	assert.Equal(t, "end_turn", result.StopReason)
	assert.Equal(t, "Creating the report now.\n\nDone. The report is attached.", result.Text)
	assert.Equal(t, int64(2100), result.Usage.InputTokens)
	assert.Equal(t, int64(350), result.Usage.OutputTokens)
	assert.Contains(t, collector.CollectedText(), "Creating the report now.")
	assert.Contains(t, collector.CollectedText(), "Done. The report is attached.")

	require.NotNil(t, result.Response)
}

func TestRunIncludesAnthropicSkills(t *testing.T) {
	var captured capturedRequest

	r := newTestRunner(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(runResponse))
	}))

	_, err := r.Run(context.Background(), Request{
		SkillID:         "skill_abc",
		Version:         "3",
		Prompt:          "Build the deck",
		Model:           "claude-opus-4-1",
		MaxTokens:       8192,
		AnthropicSkills: []string{"xlsx", "pptx"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "claude-opus-4-1", captured.Model)
	assert.Equal(t, int64(8192), captured.MaxTokens)
	require.Len(t, captured.Container.Skills, 3)
	assert.Equal(t, containerSkill{Type: "custom", SkillID: "skill_abc", Version: "3"}, captured.Container.Skills[0])
	assert.Equal(t, containerSkill{Type: "anthropic", SkillID: "xlsx", Version: "latest"}, captured.Container.Skills[1])
	assert.Equal(t, containerSkill{Type: "anthropic", SkillID: "pptx", Version: "latest"}, captured.Container.Skills[2])
}

func TestRunValidation(t *testing.T) {
	r := newTestRunner(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		t.Fatal("no request expected")
	}))

	_, err := r.Run(context.Background(), Request{Prompt: "hi"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skill id")

	_, err = r.Run(context.Background(), Request{SkillID: "skill_abc", Prompt: "   "}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt")
}

func TestRunAPIError(t *testing.T) {
	r := newTestRunner(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, `{"type":"error","error":{"type":"api_error","message":"boom"}}`, http.StatusInternalServerError)
	}))

	_, err := r.Run(context.Background(), Request{SkillID: "skill_abc", Prompt: "hi"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending skill run")
}

func TestCodeResultSummary(t *testing.T) {
	t.Run("success shows stdout", func(t *testing.T) {
		raw := `{"type":"bash_code_execution_tool_result","content":{"stdout":"done\n","stderr":"","return_code":0}}`
		assert.Equal(t, "done", codeResultSummary(raw))
	})

	t.Run("failure shows exit code and stderr", func(t *testing.T) {
		raw := `{"type":"bash_code_execution_tool_result","content":{"stdout":"","stderr":"no such file\n","return_code":2}}`
		assert.Equal(t, "exit 2: no such file", codeResultSummary(raw))
	})

	t.Run("invalid json", func(t *testing.T) {
		assert.Equal(t, "", codeResultSummary("{nope"))
	})
}
