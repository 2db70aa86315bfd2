// Package checkout — оформление продажи: прямая оплата и внешняя (Mercado Pago) со сверкой после возврата.
package checkout

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/Gunvolt24/pos_terminal/internal/ports"
	"github.com/Gunvolt24/pos_terminal/pkg/metrics"
	"github.com/Gunvolt24/pos_terminal/pkg/validate"
	"github.com/shopspring/decimal"
)

// cartEngine — то, что оформлению нужно от корзины терминала.
type cartEngine interface {
	Snapshot() domain.CartSnapshot
	Clear(ctx context.Context)
	Replace(ctx context.Context, lines []domain.CartLine) int
	TaxRate() decimal.Decimal
}

// identity — текущая сессия терминала.
type identity interface {
	Current() *domain.Session
}

const (
	strategyDirect   = "direct"
	strategyExternal = "external"
)

// Service — прямая оплата: наличные, карта, перевод.
type Service struct {
	cart      cartEngine
	session   identity
	sales     ports.SalesGateway
	validator ports.SaleValidator
	log       ports.Logger
}

func NewService(
	cart cartEngine,
	session identity,
	sales ports.SalesGateway,
	validator ports.SaleValidator,
	log ports.Logger,
) *Service {
	return &Service{
		cart:      cart,
		session:   session,
		sales:     sales,
		validator: validator,
		log:       log,
	}
}

// Pay — провести продажу по текущей корзине.
// При успехе корзина очищается; при отказе бэкенда остаётся как была.
func (s *Service) Pay(ctx context.Context, details domain.PaymentDetails) (*domain.Invoice, error) {
	snap := s.cart.Snapshot()
	if snap.Empty {
		return nil, s.fail(domain.ValidationError(domain.ErrEmptyCart, domain.MsgEmptyCart))
	}
	if details.Method == "" {
		return nil, s.fail(domain.ValidationError(domain.ErrNoPaymentMethod, domain.MsgNoPaymentMethod))
	}
	sess := s.session.Current()
	if sess == nil || sess.UserID == 0 {
		return nil, s.fail(domain.ValidationError(domain.ErrNotAuthenticated, domain.MsgNotAuthenticated))
	}
	if !details.Method.Known() || details.Method.IsExternal() {
		return nil, s.fail(domain.ValidationError(domain.ErrUnsupportedMethod, domain.MsgUnsupportedMethod))
	}

	req := &domain.SaleRequest{
		UserID:  sess.UserID,
		Items:   domain.SaleItemsFromLines(snap.Lines),
		Payment: normalizePayment(details),
	}
	if err := s.validator.Validate(ctx, req); err != nil {
		return nil, s.fail(saleValidationError(err))
	}

	inv, err := submitSale(ctx, s.sales, req)
	if err != nil {
		s.log.Warnf(ctx, "direct sale rejected user=%d method=%s: %v", sess.UserID, details.Method, err)
		return nil, s.fail(err)
	}

	s.cart.Clear(ctx)
	metrics.CheckoutOutcomes.WithLabelValues(strategyDirect, "ok").Inc()
	s.log.Infof(ctx, "sale completed invoice=%d method=%s total=%s", inv.ID, details.Method, snap.Total.StringFixed(0))
	return inv, nil
}

// History — продажи текущего кассира, новые первыми.
func (s *Service) History(ctx context.Context) ([]*domain.Invoice, error) {
	sess := s.session.Current()
	if sess == nil || sess.UserID == 0 {
		return nil, domain.ValidationError(domain.ErrNotAuthenticated, domain.MsgNotAuthenticated)
	}
	invoices, err := s.sales.SalesByUser(ctx, sess.UserID)
	if err != nil {
		if _, ok := domain.AsError(err); ok {
			return nil, err
		}
		return nil, domain.GatewayError(0, "", "Error al cargar el historial de ventas", nil, err)
	}
	sort.SliceStable(invoices, func(i, j int) bool { return invoices[i].Date.After(invoices[j].Date) })
	return invoices, nil
}

func (s *Service) fail(err error) error {
	metrics.CheckoutOutcomes.WithLabelValues(strategyDirect, string(resultOf(err))).Inc()
	return err
}

// ------вспомогательные функции------

// normalizePayment — реквизиты карты передаются только для карточных способов.
func normalizePayment(p domain.PaymentDetails) domain.PaymentDetails {
	if !p.Method.IsCard() {
		return domain.PaymentDetails{Method: p.Method, ExternalReference: p.ExternalReference}
	}
	p.CardNumber = strings.ReplaceAll(strings.TrimSpace(p.CardNumber), " ", "")
	p.CardHolder = strings.TrimSpace(p.CardHolder)
	p.SecurityCode = strings.TrimSpace(p.SecurityCode)
	p.ExpiryMonth = strings.TrimSpace(p.ExpiryMonth)
	p.ExpiryYear = strings.TrimSpace(p.ExpiryYear)
	return p
}

func saleValidationError(err error) error {
	var fe *validate.FieldError
	if errors.As(err, &fe) {
		return domain.ValidationError(err, fe.Reason)
	}
	return domain.ValidationError(err, "Datos de la venta inválidos")
}

// submitSale — отправка продажи; «чужие» ошибки и пустой ответ становятся GatewayError.
func submitSale(ctx context.Context, sales ports.SalesGateway, req *domain.SaleRequest) (*domain.Invoice, error) {
	inv, err := sales.SubmitSale(ctx, req)
	if err != nil {
		if _, ok := domain.AsError(err); ok {
			return nil, err
		}
		return nil, domain.GatewayError(0, "", domain.MsgSaleError, nil, err)
	}
	if inv == nil {
		return nil, domain.GatewayError(0, "", domain.MsgSaleError, nil, errors.New("empty invoice"))
	}
	return inv, nil
}

func resultOf(err error) Result {
	switch {
	case domain.IsKind(err, domain.KindValidation):
		return "rejected"
	case domain.IsKind(err, domain.KindAmbiguous):
		return ResultDeclined
	default:
		return ResultFailed
	}
}
