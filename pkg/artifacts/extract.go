// Package artifacts retrieves the files a skill run generates: it pulls
// file IDs out of message responses and downloads their content through the
// Files API into the local outputs directory.
package artifacts

import (
	"encoding/json"
	"regexp"

	"github.com/anthropics/anthropic-sdk-go"
)

// legacyFileIDRe recovers file IDs from plain tool_result output, the
// pre-code-execution response shape.
var legacyFileIDRe = regexp.MustCompile(`file_id['"]?\s*[:=]\s*['"]?([a-zA-Z0-9_-]+)`)

// toolResultPayload is the slice of a code-execution tool result block the
// extractor cares about: the nested content list whose items carry file IDs.
type toolResultPayload struct {
	Content struct {
		Type    string `json:"type"`
		Content []struct {
			FileID string `json:"file_id"`
		} `json:"content"`
	} `json:"content"`
}

// ExtractFileIDs returns the IDs of every file a response generated, in
// first-seen order with duplicates removed. Skill runs surface generated
// files inside bash code-execution tool results; older responses used plain
// tool_result blocks, which are scanned textually.
func ExtractFileIDs(message *anthropic.BetaMessage) []string {
	if message == nil {
		return nil
	}

	var ids []string
	for _, block := range message.Content {
		switch block.Type {
		case "bash_code_execution_tool_result", "code_execution_tool_result":
			ids = append(ids, idsFromToolResult(rawBlock(block))...)
		case "tool_result":
			for _, m := range legacyFileIDRe.FindAllStringSubmatch(rawBlock(block), -1) {
				ids = append(ids, m[1])
			}
		}
	}
	return dedupe(ids)
}

func idsFromToolResult(raw string) []string {
	var payload toolResultPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil
	}
	var ids []string
	for _, item := range payload.Content.Content {
		if item.FileID != "" {
			ids = append(ids, item.FileID)
		}
	}
	return ids
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

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
