package main

import "gridsight/cmd"

func main() {
	cmd.Execute()
}
