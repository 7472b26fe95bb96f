package guard

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
)

// commandMarker identifies settings entries managed by this tool, so
// reinstalls replace rather than duplicate them.
const commandMarker = "skillet hook"

// HookBinding is one matcher-to-command registration in the agent runtime's
// settings file.
type HookBinding struct {
	Matcher string
	Command string
}

// DefaultBindings registers both guards for the given binary path.
func DefaultBindings(binary string) []HookBinding {
	return []HookBinding{
		{Matcher: "Bash", Command: fmt.Sprintf("%s hook bash-guard", binary)},
		{Matcher: "Write|Edit|MultiEdit|NotebookEdit", Command: fmt.Sprintf("%s hook file-guard", binary)},
	}
}

// SettingsPath returns the runtime settings file under the given project
// root (.claude/settings.json).
func SettingsPath(root string) string {
	return filepath.Join(root, ".claude", "settings.json")
}

// InstallSettings merges the guard bindings into the settings file,
// preserving everything else in it. Prior skillet-managed entries are
// replaced. The file and its directory are created when absent.
func InstallSettings(settingsPath string, bindings []HookBinding) error {
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0o755); err != nil {
		return errors.Wrap(err, "creating settings directory")
	}

	return lockedfile.Transform(settingsPath, func(data []byte) ([]byte, error) {
		settings := map[string]any{}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &settings); err != nil {
				return nil, errors.Wrap(err, "parsing existing settings")
			}
		}

		entries := withoutManagedEntries(preToolUseEntries(settings))
		for _, binding := range bindings {
			entries = append(entries, map[string]any{
				"matcher": binding.Matcher,
				"hooks": []any{
					map[string]any{
						"type":    "command",
						"command": binding.Command,
					},
				},
			})
		}
		setPreToolUseEntries(settings, entries)

		result, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "encoding settings")
		}
		return append(result, '\n'), nil
	})
}

// UninstallSettings removes skillet-managed entries, leaving the rest of the
// settings untouched. A missing file is not an error.
func UninstallSettings(settingsPath string) error {
	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		return nil
	}

	return lockedfile.Transform(settingsPath, func(data []byte) ([]byte, error) {
		settings := map[string]any{}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &settings); err != nil {
				return nil, errors.Wrap(err, "parsing existing settings")
			}
		}

		setPreToolUseEntries(settings, withoutManagedEntries(preToolUseEntries(settings)))

		result, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "encoding settings")
		}
		return append(result, '\n'), nil
	})
}

// InstalledBindings lists the skillet-managed entries currently present.
func InstalledBindings(settingsPath string) ([]HookBinding, error) {
	data, err := os.ReadFile(settingsPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading settings")
	}

	settings := map[string]any{}
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, errors.Wrap(err, "parsing settings")
	}

	var bindings []HookBinding
	for _, entry := range preToolUseEntries(settings) {
		matcher, commands := entryCommands(entry)
		for _, command := range commands {
			if strings.Contains(command, commandMarker) {
				bindings = append(bindings, HookBinding{Matcher: matcher, Command: command})
			}
		}
	}
	return bindings, nil
}

func preToolUseEntries(settings map[string]any) []any {
	hooks, ok := settings["hooks"].(map[string]any)
	if !ok {
		return nil
	}
	entries, ok := hooks[hookEventName].([]any)
	if !ok {
		return nil
	}
	return entries
}

func setPreToolUseEntries(settings map[string]any, entries []any) {
	hooks, ok := settings["hooks"].(map[string]any)
	if !ok {
		hooks = map[string]any{}
		settings["hooks"] = hooks
	}
	hooks[hookEventName] = entries
}

func withoutManagedEntries(entries []any) []any {
	kept := []any{}
	for _, entry := range entries {
		_, commands := entryCommands(entry)
		managed := false
		for _, command := range commands {
			if strings.Contains(command, commandMarker) {
				managed = true
				break
			}
		}
		if !managed {
			kept = append(kept, entry)
		}
	}
	return kept
}

func entryCommands(entry any) (string, []string) {
	m, ok := entry.(map[string]any)
	if !ok {
		return "", nil
	}
	matcher, _ := m["matcher"].(string)
	hooks, ok := m["hooks"].([]any)
	if !ok {
		return matcher, nil
	}
	var commands []string
	for _, h := range hooks {
		hm, ok := h.(map[string]any)
		if !ok {
			continue
		}
		if command, ok := hm["command"].(string); ok {
			commands = append(commands, command)
		}
	}
	return matcher, commands
}
