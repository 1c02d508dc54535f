// Command probe inspects one delimited source, a local path or an http(s)
// URL, and reports how its header binds to the canonical game schema, plus
// the first few rows. Run it before collect to see whether a new file will
// resolve, and on which field it will fail if not.
//
// Example:
//
//	probe -sample=5 data/games_2023.csv
//	probe -comma=";" https://example.com/results.csv
//
// Exit status is 0 when every canonical field binds, 1 when any is missing,
// and 2 on usage errors.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"
	"unicode/utf8"

	"gamedata/internal/probe"
)

func main() {
	var (
		flagSample = flag.Int("sample", probe.DefaultSample, "data rows to read and display")
		flagComma  = flag.String("comma", ",", "field delimiter (single character)")
		flagBytes  = flag.Int("bytes", probe.DefaultMaxBytes, "bytes fetched from a URL target")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: probe [flags] <path-or-url>")
		flag.Usage()
		os.Exit(2)
	}
	target := flag.Arg(0)

	comma, size := utf8.DecodeRuneInString(*flagComma)
	if size == 0 || comma == utf8.RuneError {
		fmt.Fprintf(os.Stderr, "invalid -comma %q\n", *flagComma)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	res, err := probe.Inspect(ctx, target, probe.Options{
		Sample:   *flagSample,
		Comma:    comma,
		MaxBytes: *flagBytes,
	})
	if err != nil {
		log.Fatalf("probe: %v", err)
	}

	res.Render(os.Stdout)
	if !res.Resolved() {
		os.Exit(1)
	}
}
