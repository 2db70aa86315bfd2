package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Gunvolt24/pos_terminal/pkg/validate"
)

// CLI для офлайн-проверки продаж: валидные записи печатаются в каноническом виде в stdout,
// итог — в stderr.
func main() {
	inputPath := flag.String("in", "", "path to input (.json or .jsonl). If empty, reads JSONL from stdin.")
	formatStr := flag.String("format", "auto", "input format: auto|json|jsonl")
	flag.Parse()

	format, err := validate.ParseFormat(*formatStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation: %v\n", err)
		os.Exit(2)
	}

	ctx := context.Background()
	saleValidator := validate.NewSaleValidator()

	var summary validate.Summary
	if *inputPath == "" {
		if format == validate.FormatAuto {
			format = validate.FormatJSONL
		}
		if format == validate.FormatJSONL {
			summary, err = validate.ValidateJSONLStream(ctx, saleValidator, os.Stdin, os.Stdout)
		} else {
			summary, err = validate.ValidateFile(ctx, saleValidator, "/dev/stdin", format, os.Stdout)
		}
	} else {
		summary, err = validate.ValidateFile(ctx, saleValidator, *inputPath, format, os.Stdout)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "validation: %v (%s)\n", err, summary)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "validation ok (%s)\n", summary)
}
