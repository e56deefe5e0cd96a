package main

import "planimport/cmd"

func main() {
	cmd.Execute()
}
