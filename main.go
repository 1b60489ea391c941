package main

import "github.com/termweave/termweave/cmd"

func main() {
	cmd.Execute()
}
