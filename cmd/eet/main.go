package main

import "github.com/OpenTraceLab/relaymatrix/cmd/eet/cmd"

func main() {
	cmd.Execute()
}
