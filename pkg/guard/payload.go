package guard

import "encoding/json"

// Input mirrors the PreToolUse JSON an agent runtime writes to a hook's
// stdin. ToolInput stays raw until the tool name selects a concrete shape.
type Input struct {
	SessionID      string          `json:"session_id"`
	TranscriptPath string          `json:"transcript_path"`
	Cwd            string          `json:"cwd"`
	PermissionMode string          `json:"permission_mode"`
	HookEventName  string          `json:"hook_event_name"`
	ToolName       string          `json:"tool_name"`
	ToolInput      json.RawMessage `json:"tool_input"`
	ToolUseID      string          `json:"tool_use_id"`
}

// CommandInput is the Bash tool payload carried in Input.ToolInput.
type CommandInput struct {
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
	Timeout     int    `json:"timeout,omitempty"`
}

// WriteInput is the file-tool payload carried in Input.ToolInput. Edit and
// MultiEdit payloads carry more fields; only the path matters here.
type WriteInput struct {
	FilePath string `json:"file_path"`
}

// Output is the structured hook response written to stdout in JSON mode.
type Output struct {
	HookSpecificOutput *HookSpecificOutput `json:"hookSpecificOutput,omitempty"`
	SystemMessage      string              `json:"systemMessage,omitempty"`
}

// HookSpecificOutput carries the permission decision. Guards are advisory,
// so the decision is always "allow"; only the reason varies.
type HookSpecificOutput struct {
	HookEventName            string `json:"hookEventName"`
	PermissionDecision       string `json:"permissionDecision"`
	PermissionDecisionReason string `json:"permissionDecisionReason,omitempty"`
}
