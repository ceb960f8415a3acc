package main

import "github.com/runwaydev/runway/cmd"

func main() {
	cmd.Execute()
}
