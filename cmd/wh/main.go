package main

import (
	"fmt"
	"os"

	"workhours/internal/cli"
	"workhours/internal/config"
)

func main() {
	root := cli.NewRootCommand(config.NewLoader(), cli.OpenSQLite)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
