package cmd

import (
	"github.com/spf13/cobra"

	"problemsolving.GO/core/registry"
)

// Register adds an extension command. Call from init() in custom packages. Panics when the registry
// is locked or the name is already used by a built-in or another extension.
func Register(c *cobra.Command) {
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryCmd) {
		panic("cmd/registry: locked (register only during init before Apply)")
	}
	if taken(c.Name()) {
		panic("cmd/registry: command " + c.Name() + " already exists")
	}
	registry.GlobalRegistry.SetGlobal(registry.KeyRegistryCmd, append(extensions(), c))
}

// Apply attaches the extension commands to root and locks the registry. Later calls do nothing.
func Apply() {
	if registry.GlobalRegistry.IsLocked(registry.KeyRegistryCmd) {
		return
	}
	for _, c := range extensions() {
		rootCmd.AddCommand(c)
	}
	registry.GlobalRegistry.Lock(registry.KeyRegistryCmd)
}

func extensions() []*cobra.Command {
	if v, ok := registry.GlobalRegistry.GetGlobal(registry.KeyRegistryCmd); ok && v != nil {
		return v.([]*cobra.Command)
	}
	return nil
}

func taken(name string) bool {
	for _, c := range rootCmd.Commands() {
		if c.Name() == name {
			return true
		}
	}
	for _, c := range extensions() {
		if c.Name() == name {
			return true
		}
	}
	return false
}
