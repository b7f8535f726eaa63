package main

import (
	"os"

	"github.com/nodebug/nodebug/cmd/nodebug/cmds"
)

func main() {
	if err := cmds.New().Execute(); err != nil {
		os.Exit(1)
	}
}
