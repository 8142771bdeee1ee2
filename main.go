package main

import "github.com/remedyhq/remedy-agent/cmd"

func main() {
	cmd.Execute()
}
