package main

import (
	"fmt"
	"io"
	"os"

	"digests-ingest/core/domain"
	"digests-ingest/core/feed"
)

type parseCommand struct {
	Format string `short:"f" long:"format" description:"Skip detection and parse as this format" choice:"rss" choice:"rdf" choice:"atom" choice:"json" choice:"opml"`

	Args struct {
		File string `positional-arg-name:"file" description:"Path to the document, or - for stdin" required:"yes"`
	} `positional-args:"yes"`
}

func (c *parseCommand) Execute([]string) error {
	in := os.Stdin
	if c.Args.File != "-" {
		f, err := os.Open(c.Args.File)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	decoder := feed.Decoder{Strict: opts.Strict}
	var (
		batch *domain.Batch
		err   error
	)
	if c.Format == "" {
		batch, err = decoder.ReadAndDecode(in)
	} else {
		batch, err = readAs(decoder, domain.Format(c.Format), in)
	}
	if err != nil {
		return err
	}

	return writeIndented(os.Stdout, batch)
}

func readAs(decoder feed.Decoder, format domain.Format, f *os.File) (*domain.Batch, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name(), err)
	}
	return decoder.DecodeAs(format, data)
}
