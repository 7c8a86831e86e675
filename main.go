package main

import (
	_ "time/tzdata"

	"github.com/brk3/habitstate/cmd"
)

func main() {
	cmd.Execute()
}
