// Package integration runs the sync service end to end against a fake engine.
package integration
