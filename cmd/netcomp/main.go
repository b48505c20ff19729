package main

import "github.com/OpenTraceLab/netcmp/cmd/netcomp/cmd"

func main() {
	cmd.Execute()
}
