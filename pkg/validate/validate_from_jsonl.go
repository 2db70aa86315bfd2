package validate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/pos_terminal/internal/ports"
)

// LineError — невалидная запись: номер строки (с 1) и причина.
type LineError struct {
	Line int
	Err  error
}

// Summary — итог валидации файла или потока.
type Summary struct {
	Valid   int
	Invalid int
	Errors  []LineError
}

func (s Summary) String() string { return fmt.Sprintf("%d valid / %d invalid", s.Valid, s.Invalid) }

// ValidateJSONLStream — читает JSONL, валидирует каждую строку, валидные пишет в writer
// каноническим JSON одной строкой. Пустые строки пропускаются.
func ValidateJSONLStream(ctx context.Context, validator ports.SaleValidator, ir io.Reader, ow io.Writer) (Summary, error) {
	var res Summary

	scanner := bufio.NewScanner(ir)
	// запас на большие строки
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := ctx.Err(); err != nil {
			return res, err
		}
		lineBytes := bytes.TrimSpace(scanner.Bytes())
		if len(lineBytes) == 0 {
			continue
		}

		sale, err := ValidateSaleFromJSON(ctx, validator, lineBytes)
		if err != nil {
			res.Invalid++
			res.Errors = append(res.Errors, LineError{Line: lineNo, Err: err})
			continue
		}

		if err := writeCanonical(ow, sale); err != nil {
			return res, err
		}
		res.Valid++
	}
	if err := scanner.Err(); err != nil {
		return res, fmt.Errorf("scan: %w", err)
	}
	return res, nil
}

func writeCanonical(ow io.Writer, v any) error {
	canonical, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if _, err := ow.Write(append(canonical, '\n')); err != nil {
		return fmt.Errorf("write valid record: %w", err)
	}
	return nil
}
