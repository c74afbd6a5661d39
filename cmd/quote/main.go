package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jafarshop/configurator/internal/catalog"
	"github.com/jafarshop/configurator/internal/logger"
	"github.com/jafarshop/configurator/internal/pricing"
)

func main() {
	catalogPath := flag.String("catalog", "catalog.yaml", "path to the pricing catalog")
	multi := flag.Bool("multi", false, "input is a multi-piece order")
	flag.Usage = func() {
		fmt.Println("Usage: go run cmd/quote/main.go [-catalog catalog.yaml] [-multi] [selection.json]")
		fmt.Println("Reads the selection from stdin when no file is given.")
	}
	flag.Parse()

	if env := os.Getenv("PRICING_CATALOG_PATH"); env != "" && !isFlagSet("catalog") {
		*catalogPath = env
	}

	log := logger.New("development", "warn", "console")
	defer log.Sync()

	cat, err := catalog.Load(*catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load catalog: %v\n", err)
		os.Exit(1)
	}

	input, err := readInput(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read selection: %v\n", err)
		os.Exit(1)
	}

	composer := pricing.NewComposer(log)

	var out interface{}
	if *multi {
		var in catalog.OrderInput
		if err := json.Unmarshal(input, &in); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid order JSON: %v\n", err)
			os.Exit(1)
		}
		order, err := cat.ResolveOrder(in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to resolve order: %v\n", err)
			os.Exit(1)
		}
		b := composer.ComposeOrder(order, cat.Settings)
		out = map[string]interface{}{
			"breakdown":   b,
			"fingerprint": pricing.FingerprintOrder(order, b.UnitTotal),
		}
	} else {
		var in catalog.SelectionInput
		if err := json.Unmarshal(input, &in); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid selection JSON: %v\n", err)
			os.Exit(1)
		}
		sel := cat.Resolve(in)
		b := composer.Compose(sel, cat.Settings)
		out = map[string]interface{}{
			"breakdown":   b,
			"fingerprint": pricing.Fingerprint(sel, b.UnitTotal),
			"properties":  pricing.CartProperties(sel, b, pricing.Fingerprint(sel, b.UnitTotal)),
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		os.Exit(1)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func isFlagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
