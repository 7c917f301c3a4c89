package main

import "github.com/oshokin/alarm-clock/cmd/alarm-cli/cmd"

func main() {
	cmd.Execute()
}
