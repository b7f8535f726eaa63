//go:build ignore
// +build ignore

package main

import (
	"log"
	"os"

	"github.com/nodebug/nodebug/cmd/nodebug/cmds"
	"github.com/spf13/cobra/doc"
)

const defaultUsageDir = "./Documentation/usage"

func main() {
	usageDir := defaultUsageDir
	if len(os.Args) > 1 {
		usageDir = os.Args[1]
	}
	if err := os.MkdirAll(usageDir, 0o755); err != nil {
		log.Fatalf("creating %s: %v", usageDir, err)
	}
	if err := doc.GenMarkdownTree(cmds.New(), usageDir); err != nil {
		log.Fatalf("generating usage docs: %v", err)
	}
}
