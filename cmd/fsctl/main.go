// Command fsctl is a command line client for an fsgate server.
package main

import "github.com/GriffinCanCode/fsgate/internal/cli"

func main() {
	cli.Execute()
}
