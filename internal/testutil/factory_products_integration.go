//go:build integration

package testutil

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/shopspring/decimal"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// UniqSuffix — уникальный суффикс для ключей/терминалов в интеграционных тестах.
func UniqSuffix() string { return randHex(6) }

// MakeProduct — валидный товар каталога.
func MakeProduct(id int64, opts ...func(*domain.Product)) *domain.Product {
	p := &domain.Product{
		ID:             id,
		Description:    "Producto " + UniqSuffix(),
		Category:       "General",
		UnitPrice:      decimal.NewFromInt(1000),
		AvailableStock: 10,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithStock — опция остатка.
func WithStock(n int) func(*domain.Product) {
	return func(p *domain.Product) { p.AvailableStock = n }
}
