package validate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"
	"unicode"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/Gunvolt24/pos_terminal/internal/ports"
)

// Проверка, что SaleValidator удовлетворяет интерфейсу ports.SaleValidator.
var _ ports.SaleValidator = (*SaleValidator)(nil)

// ErrInvalidSale — базовая (sentinel error) ошибка валидации продажи.
var ErrInvalidSale = errors.New("sale validation failed")

// FieldError — конкретное поле и причина; Reason пригоден для показа кассиру.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return fmt.Sprintf("%v: %s: %s", ErrInvalidSale, e.Field, e.Reason) }

func (e *FieldError) Unwrap() error { return ErrInvalidSale }

func fieldErr(field, reason string) error { return &FieldError{Field: field, Reason: reason} }

// SaleValidator — проверка запроса продажи перед отправкой на бэкенд.
type SaleValidator struct {
	now func() time.Time
}

// NewSaleValidator — конструктор SaleValidator.
// Возвращает *FieldError (errors.Is(err, ErrInvalidSale)) при любой проблеме.
func NewSaleValidator() *SaleValidator { return &SaleValidator{now: time.Now} }

// Validate — проверяет пользователя, позиции и данные оплаты.
func (v *SaleValidator) Validate(_ context.Context, req *domain.SaleRequest) error {
	if req == nil {
		return fieldErr("venta", "la venta no puede ser nula")
	}
	if req.UserID <= 0 {
		return fieldErr("idUsuario", "usuario no válido")
	}
	if err := v.validateItems(req.Items); err != nil {
		return err
	}
	return v.validatePayment(&req.Payment)
}

// Валидация позиций
func (v *SaleValidator) validateItems(items []domain.SaleItem) error {
	if len(items) == 0 {
		return fieldErr("items", "la venta no tiene productos")
	}
	seen := make(map[int64]struct{}, len(items))
	for i := range items {
		idx := strconv.Itoa(i)
		if items[i].ProductID <= 0 {
			return fieldErr("items["+idx+"].idProducto", "producto no válido")
		}
		if items[i].Quantity <= 0 {
			return fieldErr("items["+idx+"].cantidad", "la cantidad debe ser mayor que cero")
		}
		if _, dup := seen[items[i].ProductID]; dup {
			return fieldErr("items["+idx+"].idProducto", "producto repetido")
		}
		seen[items[i].ProductID] = struct{}{}
	}
	return nil
}

// Валидация оплаты
func (v *SaleValidator) validatePayment(p *domain.PaymentDetails) error {
	if p.Method == "" {
		return fieldErr("metodoPago", domain.MsgNoPaymentMethod)
	}
	if !p.Method.Known() {
		return fieldErr("metodoPago", "método de pago no soportado")
	}
	if !p.Method.IsCard() {
		return nil
	}
	return v.validateCard(p)
}

// Валидация карты
func (v *SaleValidator) validateCard(p *domain.PaymentDetails) error {
	if n := len(p.CardNumber); n < 13 || n > 19 || !digits(p.CardNumber) {
		return fieldErr("numeroTarjeta", "número de tarjeta inválido")
	}
	if p.CardHolder == "" {
		return fieldErr("nombreTitular", "el nombre del titular es obligatorio")
	}
	if n := len(p.SecurityCode); n < 3 || n > 4 || !digits(p.SecurityCode) {
		return fieldErr("codigoSeguridad", "código de seguridad inválido")
	}

	month, err := strconv.Atoi(p.ExpiryMonth)
	if err != nil || month < 1 || month > 12 {
		return fieldErr("mesVencimiento", "mes de vencimiento inválido")
	}
	year, err := strconv.Atoi(p.ExpiryYear)
	if err != nil || !digits(p.ExpiryYear) || (len(p.ExpiryYear) != 2 && len(p.ExpiryYear) != 4) {
		return fieldErr("anoVencimiento", "año de vencimiento inválido")
	}
	if year < 100 {
		year += 2000
	}

	now := v.now()
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return fieldErr("mesVencimiento", "la tarjeta está vencida")
	}
	return nil
}

func digits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
