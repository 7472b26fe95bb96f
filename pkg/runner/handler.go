package runner

import (
	"fmt"
	"strings"
)

// Handler defines how run events should be processed.
type Handler interface {
	HandleText(text string)
	HandleToolUse(toolName string, input string)
	HandleToolResult(toolName string, output string)
	HandleDone()
}

// ConsoleHandler prints run events to the console.
type ConsoleHandler struct {
	Quiet bool
}

func (h *ConsoleHandler) HandleText(text string) {
	if !h.Quiet {
		fmt.Println(text)
		fmt.Println()
	}
}

func (h *ConsoleHandler) HandleToolUse(toolName string, input string) {
	if !h.Quiet {
		fmt.Printf("🔧 Using tool: %s: %s\n\n", toolName, input)
	}
}

func (h *ConsoleHandler) HandleToolResult(toolName string, output string) {
	if !h.Quiet {
		fmt.Printf("🔄 Tool result: %s\n\n", output)
	}
}

func (h *ConsoleHandler) HandleDone() {
	// No action needed for console handler
}

// StringCollectorHandler collects text responses into a string.
type StringCollectorHandler struct {
	Quiet bool
	text  strings.Builder
}

func (h *StringCollectorHandler) HandleText(text string) {
	h.text.WriteString(text)
	h.text.WriteString("\n")

	if !h.Quiet {
		fmt.Println(text)
		fmt.Println()
	}
}

func (h *StringCollectorHandler) HandleToolUse(toolName string, input string) {
	if !h.Quiet {
		fmt.Printf("🔧 Using tool: %s: %s\n\n", toolName, input)
	}
}

func (h *StringCollectorHandler) HandleToolResult(toolName string, output string) {
	if !h.Quiet {
		fmt.Printf("🔄 Tool result: %s\n\n", output)
	}
}

func (h *StringCollectorHandler) HandleDone() {
	// No action needed for string collector
}

func (h *StringCollectorHandler) CollectedText() string {
	return h.text.String()
}
