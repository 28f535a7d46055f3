// cmd/nvsbench/main.go
package main

import (
	cmd "github.com/mwiater/nvsbench/internal/cli"
)

// main starts the nvsbench CLI by delegating to the cobra root command.
func main() {
	cmd.Execute()
}
