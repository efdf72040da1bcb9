package common

import "github.com/urfave/cli/v2"

var commands []*cli.Command

// RegisterCommand -- register a command, called from the init() of each command package
func RegisterCommand(command *cli.Command) {
	commands = append(commands, command)
}

// GetCommands --
func GetCommands() []*cli.Command {
	return commands
}
