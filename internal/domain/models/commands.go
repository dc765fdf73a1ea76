package models

import "strings"

// CommandType enumerates supported chat command categories.
type CommandType string

const (
	CommandDue     CommandType = "due"
	CommandTags    CommandType = "tags"
	CommandReady   CommandType = "ready"
	CommandOverdue CommandType = "overdue"
	CommandDigest  CommandType = "digest"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed worker instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// IsSlashCommand reports whether the message uses the explicit /command syntax.
func IsSlashCommand(message string) bool {
	return strings.HasPrefix(strings.TrimSpace(message), "/")
}

// ParseCommand derives a Command instance from free-form text messages.
// The command word is case-insensitive; arguments such as goat tags keep their case.
func ParseCommand(message string) Command {
	tokens := strings.Fields(strings.TrimSpace(message))
	cmd := Command{Raw: message}

	if len(tokens) == 0 {
		cmd.Type = CommandUnknown
		return cmd
	}

	head := strings.ToLower(strings.TrimPrefix(tokens[0], "/"))
	switch head {
	case string(CommandDue):
		cmd.Type = CommandDue
	case string(CommandTags):
		cmd.Type = CommandTags
	case string(CommandReady):
		cmd.Type = CommandReady
	case string(CommandOverdue):
		cmd.Type = CommandOverdue
	case string(CommandDigest):
		cmd.Type = CommandDigest
	default:
		cmd.Type = CommandUnknown
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
