// Package commands declares the registry entry for a slash command.
package commands

import (
	tele "gopkg.in/telebot.v4"
)

// Command is one registered slash command. AdminOnly gates it behind the
// shop's admin allow-list and keeps it out of the public command menu;
// Hidden only does the latter. Aliases resolve to the same handler.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}
