package artifacts

import (
	"encoding/json"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messageFromJSON(t *testing.T, raw string) *anthropic.BetaMessage {
	t.Helper()
	var message anthropic.BetaMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &message))
	return &message
}

func TestExtractFileIDs(t *testing.T) {
	message := messageFromJSON(t, `{
		"id": "msg_01",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-5",
		"content": [
			{"type": "text", "text": "Created the spreadsheet and a chart."},
			{
				"type": "bash_code_execution_tool_result",
				"tool_use_id": "srvtoolu_01",
				"content": {
					"type": "bash_code_execution_result",
					"stdout": "done",
					"stderr": "",
					"return_code": 0,
					"content": [
						{"type": "code_execution_output", "file_id": "file_budget"},
						{"type": "code_execution_output", "file_id": "file_chart"}
					]
				}
			}
		],
		"stop_reason": "end_turn",
		"usage": {"input_tokens": 100, "output_tokens": 50}
	}`)

	ids := ExtractFileIDs(message)
	assert.Equal(t, []string{"file_budget", "file_chart"}, ids)
}

func TestExtractFileIDsDedupes(t *testing.T) {
	message := messageFromJSON(t, `{
		"id": "msg_02",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-5",
		"content": [
			{
				"type": "bash_code_execution_tool_result",
				"tool_use_id": "srvtoolu_01",
				"content": {
					"type": "bash_code_execution_result",
					"content": [{"type": "code_execution_output", "file_id": "file_same"}]
				}
			},
			{
				"type": "bash_code_execution_tool_result",
				"tool_use_id": "srvtoolu_02",
				"content": {
					"type": "bash_code_execution_result",
					"content": [
						{"type": "code_execution_output", "file_id": "file_same"},
						{"type": "code_execution_output", "file_id": "file_other"}
					]
				}
			}
		],
		"usage": {"input_tokens": 1, "output_tokens": 1}
	}`)

	ids := ExtractFileIDs(message)
	assert.Equal(t, []string{"file_same", "file_other"}, ids)
}

func TestExtractFileIDsLegacyToolResult(t *testing.T) {
	message := messageFromJSON(t, `{
		"id": "msg_03",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-5",
		"content": [
			{"type": "tool_result", "tool_use_id": "toolu_01", "content": "saved output with file_id: file_legacy1 and more"}
		],
		"usage": {"input_tokens": 1, "output_tokens": 1}
	}`)

	ids := ExtractFileIDs(message)
	assert.Equal(t, []string{"file_legacy1"}, ids)
}

func TestExtractFileIDsEmpty(t *testing.T) {
	t.Run("nil message", func(t *testing.T) {
		assert.Empty(t, ExtractFileIDs(nil))
	})

	t.Run("text only", func(t *testing.T) {
		message := messageFromJSON(t, `{
			"id": "msg_04",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5",
			"content": [{"type": "text", "text": "No files were produced."}],
			"usage": {"input_tokens": 1, "output_tokens": 1}
		}`)
		assert.Empty(t, ExtractFileIDs(message))
	})
}
