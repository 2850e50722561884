package main

import "wesync/cmd/client/cmd"

func main() {
	cmd.Execute()
}
