// Command validate-catalog checks the MCP catalog invariants and prints a
// report. It exits non-zero when the catalog is invalid, so it can run in CI.
//
// Usage:
//
//	validate-catalog [options]
//
// Options:
//
//	-strict     Treat warnings as errors
//	-json       Output results as JSON
//	-quiet      Only output errors
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/chartdb/chartdb-gateway/internal/mcp"
)

func main() {
	fs := flag.NewFlagSet("validate-catalog", flag.ExitOnError)
	strict := fs.Bool("strict", false, "Treat warnings as errors")
	asJSON := fs.Bool("json", false, "Output results as JSON")
	quiet := fs.Bool("quiet", false, "Only output errors")

	if err := fs.Parse(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(*strict, *asJSON, *quiet))
}

func run(strict, asJSON, quiet bool) int {
	catalog := mcp.NewCatalog()
	result := mcp.ValidateCatalog(catalog)

	if asJSON {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	} else {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e)
		}
		if !quiet {
			for _, w := range result.Warnings {
				fmt.Printf("warning: %s\n", w)
			}
			fmt.Printf("%d tools, %d resources, %d prompts: %d errors, %d warnings\n",
				len(catalog.Tools()), len(catalog.Resources()), len(catalog.Prompts()),
				len(result.Errors), len(result.Warnings))
		}
	}

	if !result.Valid || (strict && len(result.Warnings) > 0) {
		return 1
	}
	return 0
}
