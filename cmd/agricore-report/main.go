// Command agricore-report loads a holdings file, registers every crop and
// forest stand in an in-memory registry, and prints the portfolio analysis
// as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"agricore/internal/analysis"
	"agricore/internal/core"
)

var exitFunc = os.Exit

// holdingsFile is the on-disk input format.
type holdingsFile struct {
	Crops   []core.Crop   `json:"crops"`
	Forests []core.Forest `json:"forests"`
}

func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("agricore-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var holdingsPath string
	var pretty bool
	fs.StringVar(&holdingsPath, "holdings", "holdings.json", "path to holdings JSON file")
	fs.BoolVar(&pretty, "pretty", true, "indent JSON output")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	raw, err := os.ReadFile(holdingsPath)
	if err != nil {
		fmt.Fprintf(stderr, "read holdings: %v\n", err)
		return 1
	}
	var holdings holdingsFile
	if err := json.Unmarshal(raw, &holdings); err != nil {
		fmt.Fprintf(stderr, "parse holdings: %v\n", err)
		return 1
	}

	ctx := context.Background()
	svc := core.NewInMemoryService(core.NewRulesEngine())
	for _, crop := range holdings.Crops {
		if _, _, err := svc.AddCrop(ctx, crop); err != nil {
			fmt.Fprintf(stderr, "add crop %q: %v\n", crop.Name, err)
			return 1
		}
	}
	for _, forest := range holdings.Forests {
		if _, _, err := svc.AddForest(ctx, forest); err != nil {
			fmt.Fprintf(stderr, "add forest %q: %v\n", forest.Name, err)
			return 1
		}
	}

	report, err := svc.ComputeInsights(ctx, analysis.DefaultPolicy())
	if err != nil {
		fmt.Fprintf(stderr, "compute insights: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		fmt.Fprintf(stderr, "encode report: %v\n", err)
		return 1
	}
	return 0
}
