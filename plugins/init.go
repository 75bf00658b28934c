// Package plugins registers all built-in plugins.
package plugins

import (
	"firestige.xyz/strix/pkg/plugin"
	"firestige.xyz/strix/plugins/parser/sdp"
	"firestige.xyz/strix/plugins/reporter/console"
	"firestige.xyz/strix/plugins/reporter/jsonfile"
)

func init() {
	// Register parser plugins
	plugin.RegisterParser(sdp.Name, sdp.NewSDPParser)

	// Register reporter plugins
	plugin.RegisterReporter(console.Name, console.NewConsoleReporter)
	plugin.RegisterReporter(jsonfile.Name, jsonfile.NewFileReporter)
}
