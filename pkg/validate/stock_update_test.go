package validate

import (
	"errors"
	"testing"
)

func TestDecodeStockUpdate(t *testing.T) {
	upd, err := DecodeStockUpdate([]byte(`{"idProducto":3,"cantidadDisponible":8,"precioUnitario":"1500"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upd.ProductID != 3 || upd.AvailableStock != 8 || upd.UnitPrice == nil || upd.UnitPrice.String() != "1500" {
		t.Fatalf("decoded wrong: %+v", upd)
	}

	upd, err = DecodeStockUpdate([]byte(`{"idProducto":3,"cantidadDisponible":0}`))
	if err != nil || upd.UnitPrice != nil {
		t.Fatalf("price must be optional: %+v err=%v", upd, err)
	}
}

func TestDecodeStockUpdate_Invalid(t *testing.T) {
	cases := map[string]string{
		"broken json":    `{"idProducto":`,
		"unknown field":  `{"idProducto":1,"cantidadDisponible":1,"extra":true}`,
		"trailing data":  `{"idProducto":1,"cantidadDisponible":1}{}`,
		"zero id":        `{"idProducto":0,"cantidadDisponible":1}`,
		"negative stock": `{"idProducto":1,"cantidadDisponible":-1}`,
		"negative price": `{"idProducto":1,"cantidadDisponible":1,"precioUnitario":"-5"}`,
	}
	for name, raw := range cases {
		if _, err := DecodeStockUpdate([]byte(raw)); !errors.Is(err, ErrInvalidStockUpdate) {
			t.Fatalf("%s: want ErrInvalidStockUpdate, got %v", name, err)
		}
	}
}
