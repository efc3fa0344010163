package main

import (
	"github.com/luma/racedirector/cmd"
)

func main() {
	cmd.Execute()
}
