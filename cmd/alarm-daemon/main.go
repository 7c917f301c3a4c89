package main

import "github.com/oshokin/alarm-clock/cmd/alarm-daemon/cmd"

func main() {
	cmd.Execute()
}
