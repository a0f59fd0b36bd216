package main

import "github.com/kamal-hamza/pxo/cmd"

func main() {
	cmd.Execute()
}
