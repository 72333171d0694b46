// Package state tracks per-user dialog position for the bot's multi-step
// flows (receipt upload, admin catalog editing). Sessions live in memory;
// entering a new flow replaces whatever the user had in progress, and idle
// sessions expire on their own.
package state
