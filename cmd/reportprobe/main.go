package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"reportetl/internal/parser"
	"reportetl/internal/probe"
)

// main inspects a downloaded report file and prints a JSON summary of its
// columns, value formats and a dry run of the admission filter. It exits 1
// when required columns are missing.
func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, time.Now))
}

func run(args []string, stdout, stderr io.Writer, now func() time.Time) int {
	fs := flag.NewFlagSet("reportprobe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		flagFile    = fs.String("file", "", "path of the report file (.xlsx, .xlsm, .csv)")
		flagSheet   = fs.String("sheet", "", "worksheet name (default: first sheet)")
		flagRef     = fs.String("reference-date", "", "report day as YYYY-MM-DD for the dry run (default: today)")
		flagSamples = fs.Int("samples", probe.DefaultSamples, "example values to print per column")
		flagPretty  = fs.Bool("pretty", true, "pretty-print JSON output")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *flagFile == "" {
		fmt.Fprintln(stderr, "missing -file")
		fs.Usage()
		return 2
	}

	ref := now()
	if *flagRef != "" {
		var err error
		if ref, err = time.Parse(time.DateOnly, *flagRef); err != nil {
			fmt.Fprintf(stderr, "invalid -reference-date %q: want YYYY-MM-DD\n", *flagRef)
			return 2
		}
	}

	p, err := parser.ForFile(*flagFile, parser.Options{Sheet: *flagSheet})
	if err != nil {
		fmt.Fprintf(stderr, "probe: %v\n", err)
		return 2
	}
	f, err := os.Open(*flagFile)
	if err != nil {
		fmt.Fprintf(stderr, "probe: %v\n", err)
		return 1
	}
	defer f.Close()

	tbl, err := p.Parse(f)
	if err != nil {
		fmt.Fprintf(stderr, "probe: parse %s: %v\n", *flagFile, err)
		return 1
	}
	res := probe.Inspect(tbl, ref, now(), *flagSamples)

	enc := json.NewEncoder(stdout)
	if *flagPretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		fmt.Fprintf(stderr, "encode result: %v\n", err)
		return 1
	}
	if len(res.Missing) > 0 {
		fmt.Fprintf(stderr, "missing required columns: %v\n", res.Missing)
		return 1
	}
	return 0
}
