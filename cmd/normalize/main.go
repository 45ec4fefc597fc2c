package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"chartfeed/internal/errors"
	"chartfeed/internal/logger"
	"chartfeed/internal/normalize"
	"chartfeed/internal/quote"
)

type output struct {
	Status string        `json:"status"`
	Quotes []quote.Quote `json:"quotes"`
}

func main() {
	var (
		kind   string
		inPath string
		pretty bool
	)
	flag.StringVar(&kind, "kind", string(normalize.KindHistory), "payload kind: "+kindList())
	flag.StringVar(&inPath, "in", "-", "payload file, - for stdin")
	flag.BoolVar(&pretty, "pretty", false, "indent output")
	flag.Parse()

	log, err := logger.New(logger.WithOutputPaths("stderr"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	err = runFile(normalize.Kind(kind), inPath, os.Stdout, pretty)
	if err != nil {
		log.Error(err, logger.NewField("kind", kind), logger.NewField("in", inPath))
	}
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// runFile runs one payload read from path, or from stdin when path is "-".
func runFile(kind normalize.Kind, path string, out io.Writer, pretty bool) error {
	if path == "-" {
		return run(kind, os.Stdin, out, pretty)
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.TracerFromError(err)
	}
	defer f.Close()
	return run(kind, f, out, pretty)
}

// run normalizes one payload read from in and writes the outcome to out.
func run(kind normalize.Kind, in io.Reader, out io.Writer, pretty bool) error {
	raw, err := io.ReadAll(in)
	if err != nil {
		return errors.NewTracer("read payload").Wrap(err)
	}
	res, err := normalize.Payload(kind, raw)
	if err != nil {
		return errors.NewTracer("normalize").Wrap(err)
	}
	o := output{Status: res.Status.String(), Quotes: res.Quotes}
	if o.Quotes == nil {
		o.Quotes = []quote.Quote{}
	}
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(o)
}

func kindList() string {
	names := make([]string, len(normalize.Kinds))
	for i, k := range normalize.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
