package main

import "stylebook/cmd/stylebook-cli/cmd"

func main() {
	cmd.Execute()
}
