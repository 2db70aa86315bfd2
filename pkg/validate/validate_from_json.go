package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/Gunvolt24/pos_terminal/internal/ports"
)

// ValidateSaleFromJSON — строгий разбор и валидация продажи из JSON.
func ValidateSaleFromJSON(ctx context.Context, validator ports.SaleValidator, raw []byte) (*domain.SaleRequest, error) {
	var sale domain.SaleRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&sale); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	// гарантируем отсутствие данных после объекта
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return nil, fmt.Errorf("invalid json: trailing data")
	}
	if err := validator.Validate(ctx, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}
