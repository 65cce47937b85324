package main

import "github.com/pilab-dev/shadow-social/cmd/socialctl/cmd"

func main() {
	cmd.Execute()
}
