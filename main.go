package main

import (
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/ykotov/clipvault/internal/cli"
)

func main() {
	var args cli.Args
	parser := arg.MustParse(&args)

	// Default behavior: open the history browser (same as 'clipvault show')
	if args.Watch == nil && args.Show == nil && args.Search == nil &&
		args.Clear == nil && args.Config == nil {
		args.Show = &cli.ShowCmd{}
	}

	cliHandler, err := cli.NewWithArgs(&args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	if err := cliHandler.Execute(&args); err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println()
		parser.WriteUsage(os.Stderr)
		os.Exit(1)
	}
}
