//go:build cli
// +build cli

package main

import (
	_ "problemsolving.GO/custom"

	"problemsolving.GO/cmd"
	"problemsolving.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
