package models

import "strings"

// CommandType enumerates supported collection-centre command categories.
type CommandType string

const (
	CommandCollect CommandType = "collect"
	CommandPay     CommandType = "pay"
	CommandSummary CommandType = "summary"
	CommandBalance CommandType = "balance"
	CommandTop     CommandType = "top"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

// Command represents a parsed operator instruction extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command instance from free-form text messages.
func ParseCommand(message string) Command {
	tokens := strings.Fields(message)
	if len(tokens) == 0 {
		return Command{Type: CommandUnknown, Raw: message}
	}

	cmd := Command{Raw: message}

	// arguments keep their case so payment references survive
	head := strings.TrimPrefix(normalize(tokens[0]), "/")
	switch head {
	case string(CommandCollect), "milk":
		cmd.Type = CommandCollect
	case string(CommandPay), "payment":
		cmd.Type = CommandPay
	case string(CommandSummary), "today":
		cmd.Type = CommandSummary
	case string(CommandBalance), "due":
		cmd.Type = CommandBalance
	case string(CommandTop):
		cmd.Type = CommandTop
	case string(CommandHelp), "start":
		cmd.Type = CommandHelp
	default:
		cmd.Type = CommandUnknown
	}

	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}

func normalize(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
