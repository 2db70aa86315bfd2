package validate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Gunvolt24/pos_terminal/internal/ports"
)

// InputFormat допустимые значения.
type InputFormat string

const (
	FormatAuto  InputFormat = "auto"
	FormatJSON  InputFormat = "json"
	FormatJSONL InputFormat = "jsonl"
)

// ParseFormat — формат из строки флага; неизвестное значение — ошибка.
func ParseFormat(s string) (InputFormat, error) {
	switch f := InputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatJSON, FormatJSONL:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", s)
	}
}

// ValidateFile — валидирует файл продаж как JSON (одна продажа) или JSONL (по продаже в строке).
// Для auto формат определяется по расширению, по умолчанию JSON.
func ValidateFile(ctx context.Context, validator ports.SaleValidator, filePath string, format InputFormat, ow io.Writer) (Summary, error) {
	if format == FormatAuto {
		format = FormatJSON
		if strings.EqualFold(filepath.Ext(filePath), ".jsonl") {
			format = FormatJSONL
		}
	}

	file, err := os.Open(filePath)
	if err != nil {
		return Summary{}, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatJSON:
		raw, err := io.ReadAll(file)
		if err != nil {
			return Summary{}, fmt.Errorf("read file: %w", err)
		}
		sale, err := ValidateSaleFromJSON(ctx, validator, raw)
		if err != nil {
			return Summary{Invalid: 1, Errors: []LineError{{Line: 1, Err: err}}}, nil
		}
		if err := writeCanonical(ow, sale); err != nil {
			return Summary{}, err
		}
		return Summary{Valid: 1}, nil

	case FormatJSONL:
		return ValidateJSONLStream(ctx, validator, file, ow)

	default:
		return Summary{}, fmt.Errorf("unsupported format: %s", format)
	}
}
