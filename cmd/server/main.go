package main

import "github.com/streetcode-platform/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
