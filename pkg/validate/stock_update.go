package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
)

// ErrInvalidStockUpdate — событие инвентаризации не прошло проверку (коммитится и пропускается).
var ErrInvalidStockUpdate = errors.New("invalid stock update")

// DecodeStockUpdate — строгий разбор события {idProducto, cantidadDisponible, precioUnitario?}.
func DecodeStockUpdate(raw []byte) (*domain.StockUpdate, error) {
	var upd domain.StockUpdate
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&upd); err != nil {
		return nil, fmt.Errorf("%w: invalid json: %v", ErrInvalidStockUpdate, err)
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return nil, fmt.Errorf("%w: invalid json: trailing data", ErrInvalidStockUpdate)
	}
	if err := ValidateStockUpdate(&upd); err != nil {
		return nil, err
	}
	return &upd, nil
}

// ValidateStockUpdate — id > 0, остаток >= 0, цена (если есть) >= 0.
func ValidateStockUpdate(upd *domain.StockUpdate) error {
	switch {
	case upd == nil:
		return fmt.Errorf("%w: nil update", ErrInvalidStockUpdate)
	case upd.ProductID <= 0:
		return fmt.Errorf("%w: idProducto must be positive", ErrInvalidStockUpdate)
	case upd.AvailableStock < 0:
		return fmt.Errorf("%w: cantidadDisponible must be non-negative", ErrInvalidStockUpdate)
	case upd.UnitPrice != nil && upd.UnitPrice.IsNegative():
		return fmt.Errorf("%w: precioUnitario must be non-negative", ErrInvalidStockUpdate)
	}
	return nil
}
