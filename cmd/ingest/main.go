// ABOUTME: Command line entry point for the feed ingester
// ABOUTME: Offers a local parse command and a fetch command that runs the worker pool

package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type options struct {
	Strict bool `long:"strict" description:"Validate JSON Feed and OPML documents against their versioned schemas"`
}

var opts options

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.LongDescription = "Normalizes RSS, Atom, JSON Feed and OPML documents."

	if _, err := parser.AddCommand("parse", "Parse a local file",
		"Parses a feed or OPML file and prints the canonical JSON document.", &parseCommand{}); err != nil {
		panic(err)
	}
	if _, err := parser.AddCommand("fetch", "Fetch and ingest feed URLs",
		"Fetches each URL through the resilience pipeline and prints one JSON batch per line. "+
			"Settings are read from the environment.", &fetchCommand{}); err != nil {
		panic(err)
	}

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}
