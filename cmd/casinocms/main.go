package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "convert":
		err = runConvert(os.Args[2:])
	case "watch":
		err = runWatch(os.Args[2:])
	case "version":
		fmt.Printf("casinocms %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`casinocms - converts design-tool HTML exports into React template components

Usage:
  casinocms <command> [arguments]

Commands:
  serve                      Start the admin server (config from casinocms.yaml, .env and CASINOCMS_* variables)
  convert [flags] file.html  Convert one export and print or write the component
  watch [flags] dir          Re-convert exports in dir whenever they change
  version                    Print the casinocms version
  help                       Show this help message

Examples:
  casinocms serve
  casinocms convert -name BonusPage -o BonusPage.tsx export.html
  casinocms watch -out components/templates/custom exports/`)
}
