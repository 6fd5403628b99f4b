package ops

import (
	"context"
	"fmt"
	"strings"
)

// HelpOp renders the help menu from the registry.
type HelpOp struct {
	Registry *Registry
}

func (h *HelpOp) Name() string        { return "help" }
func (h *HelpOp) Description() string { return "Show this help message" }
func (h *HelpOp) ParseMode() string   { return ModeMarkdown }

func (h *HelpOp) Execute(_ context.Context, _ string) (string, error) {
	all := h.Registry.List()
	if len(all) == 0 {
		return "No commands available.", nil
	}

	lines := make([]string, 0, len(all)+1)
	lines = append(lines, "🆘 *Help Menu*")
	for _, op := range all {
		lines = append(lines, fmt.Sprintf("/%s - %s", op.Name(), op.Description()))
	}
	return strings.Join(lines, "\n"), nil
}
