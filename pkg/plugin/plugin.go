// Package plugin defines plugin interfaces.
package plugin

import "context"

// Plugin is the common lifecycle implemented by every plugin.
type Plugin interface {
	// Name returns the identifier used in configuration.
	Name() string
	Init(config map[string]any) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
