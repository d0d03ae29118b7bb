package commands

import (
	"strings"

	"github.com/goliatone/go-folio/internal/logging"
	"github.com/goliatone/go-folio/pkg/interfaces"
)

// CommandLogger returns the logger for a group of handlers. Handlers in group
// "build" log under "folio.commands.build"; an empty group uses the
// "folio.commands" root.
func CommandLogger(provider interfaces.LoggerProvider, group string) interfaces.Logger {
	group = strings.ToLower(strings.TrimSpace(group))
	var logger interfaces.Logger
	if group == "" {
		group = "root"
		logger = logging.CommandsLogger(provider)
	} else {
		logger = logging.ModuleLogger(provider, logging.CommandsModule+"."+group)
	}
	return logging.WithFields(logger, map[string]any{
		"component":     "command",
		"command_group": group,
	})
}
