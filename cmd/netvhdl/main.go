package main

import "github.com/OpenTraceLab/netvhdl/cmd/netvhdl/cmd"

func main() {
	cmd.Execute()
}
