package main

import "github.com/notargets/symfc/cmd"

func main() {
	cmd.Execute()
}
