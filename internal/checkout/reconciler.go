package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/Gunvolt24/pos_terminal/internal/localstate"
	"github.com/Gunvolt24/pos_terminal/internal/ports"
	"github.com/Gunvolt24/pos_terminal/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// State — состояние сверки внешней оплаты.
type State string

const (
	StateIdle                  State = "idle"
	StateAwaitingAuthorization State = "awaiting_authorization"
	StateReconciling           State = "reconciling"
)

// Result — исход шага оформления.
type Result string

const (
	ResultRedirect          Result = "redirect"
	ResultCompleted         Result = "completed"
	ResultPaymentPending    Result = "payment_pending"
	ResultPaymentFailed     Result = "payment_failed"
	ResultDeclined          Result = "declined"
	ResultFailed            Result = "failed"
	ResultNeedsConfirmation Result = "needs_confirmation"
	ResultNothingPending    Result = "nothing_pending"
)

// ReturnPath — адрес возврата со страницы оплаты.
const ReturnPath = "/pos/return"

const (
	ConfirmPrompt          = "¿Completaste el pago en Mercado Pago?"
	MsgSaleCompleted       = "Venta registrada correctamente"
	MsgPaymentPending      = "El pago quedó pendiente en Mercado Pago"
	MsgPaymentFailed       = "El pago fue rechazado por Mercado Pago"
	MsgPaymentNotConfirmed = "Pago no confirmado. El carrito se conserva."
	MsgPreferenceError     = "Error al crear la preferencia de pago"
	MsgPendingSaveError    = "No se pudo guardar el carrito antes del pago"

	defaultCurrency = "COP"
	referencePrefix = "VENTA-"
)

// Config — адреса внешней оплаты.
type Config struct {
	CheckoutURL string // страница оплаты, к ней добавляется ?pref_id=
	PublicURL   string // публичный адрес сервиса для URL возврата
	Currency    string
}

// Outcome — результат шага для UI.
type Outcome struct {
	Result      Result          `json:"result"`
	State       State           `json:"state"`
	Message     string          `json:"message,omitempty"`
	Prompt      string          `json:"prompt,omitempty"`
	RedirectURL string          `json:"redirectUrl,omitempty"`
	Invoice     *domain.Invoice `json:"invoice,omitempty"`
}

// Reconciler — внешняя оплата: снимок корзины перед редиректом и сверка после возврата.
// Шаги одного терминала выполняются строго по очереди.
type Reconciler struct {
	mu sync.Mutex // сериализует Begin/Resume/Confirm

	stMu  sync.Mutex
	state State

	cfg     Config
	cart    cartEngine
	session identity
	prefs   ports.PreferenceGateway
	sales   ports.SalesGateway
	store   *localstate.Store
	log     ports.Logger

	now    func() time.Time
	newRef func() string
}

func NewReconciler(
	cfg Config,
	cart cartEngine,
	session identity,
	prefs ports.PreferenceGateway,
	sales ports.SalesGateway,
	store *localstate.Store,
	log ports.Logger,
) *Reconciler {
	if cfg.Currency == "" {
		cfg.Currency = defaultCurrency
	}
	return &Reconciler{
		state:   StateIdle,
		cfg:     cfg,
		cart:    cart,
		session: session,
		prefs:   prefs,
		sales:   sales,
		store:   store,
		log:     log,
		now:     time.Now,
		newRef:  func() string { return referencePrefix + uuid.NewString() },
	}
}

// Begin — Idle → AwaitingAuthorization: сохранить снимок, создать preference, вернуть адрес оплаты.
// Снимок пишется до обращения к шлюзу; без записи оплата не начинается.
func (r *Reconciler) Begin(ctx context.Context) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := r.cart.Snapshot()
	if snap.Empty {
		return r.failed(domain.ValidationError(domain.ErrEmptyCart, domain.MsgEmptyCart))
	}
	if sess := r.session.Current(); sess == nil || sess.UserID == 0 {
		return r.failed(domain.ValidationError(domain.ErrNotAuthenticated, domain.MsgNotAuthenticated))
	}

	record := domain.PendingExternalPayment{
		Lines:             snap.Lines,
		CreatedAt:         r.now().UTC(),
		ExternalReference: r.newRef(),
	}
	if err := r.store.Save(ctx, localstate.KeyPendingPayment, record); err != nil {
		return r.failed(domain.CacheError(err, MsgPendingSaveError))
	}
	r.setState(StateAwaitingAuthorization)

	pref, err := r.prefs.CreatePreference(ctx, r.preferenceRequest(record))
	if err == nil && (pref == nil || pref.ID == "") {
		err = domain.GatewayError(0, "", MsgPreferenceError, nil, errors.New("missing preference id"))
	}
	if err != nil {
		r.clearPending(ctx)
		if _, ok := domain.AsError(err); !ok {
			err = domain.GatewayError(0, "", MsgPreferenceError, nil, err)
		}
		r.log.Warnf(ctx, "create preference failed ref=%s: %v", record.ExternalReference, err)
		return r.failed(err)
	}

	record.PreferenceID = pref.ID
	if err := r.store.Save(ctx, localstate.KeyPendingPayment, record); err != nil {
		r.log.Warnf(ctx, "pending payment update failed ref=%s: %v", record.ExternalReference, err)
	}

	metrics.CheckoutOutcomes.WithLabelValues(strategyExternal, string(ResultRedirect)).Inc()
	r.log.Infof(ctx, "external payment started ref=%s preference=%s", record.ExternalReference, pref.ID)
	return Outcome{
		Result:      ResultRedirect,
		State:       StateAwaitingAuthorization,
		RedirectURL: r.redirectURL(pref.ID),
	}, nil
}

// Resume — возврат со страницы оплаты с маркером статуса.
// paymentRef — идентификатор платежа из URL возврата, может быть пустым.
func (r *Reconciler) Resume(ctx context.Context, status domain.ReturnStatus, paymentRef string) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok, err := r.loadPending(ctx)
	if err != nil {
		return r.failed(err)
	}
	if !ok {
		return r.finish(ResultNothingPending, domain.MsgNoPendingPayment)
	}

	switch status {
	case domain.ReturnSuccess:
		r.setState(StateReconciling)
		return r.submit(ctx, rec, paymentRef)
	case domain.ReturnPending:
		r.clearPending(ctx)
		return r.finish(ResultPaymentPending, MsgPaymentPending)
	case domain.ReturnFailure:
		r.clearPending(ctx)
		return r.finish(ResultPaymentFailed, MsgPaymentFailed)
	default:
		r.setState(StateReconciling)
		return Outcome{Result: ResultNeedsConfirmation, State: StateReconciling, Prompt: ConfirmPrompt}, nil
	}
}

// Confirm — ответ оператора на вопрос об оплате.
// Отказ отбрасывает снимок и не трогает текущую корзину.
func (r *Reconciler) Confirm(ctx context.Context, confirmed bool, paymentRef string) (Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok, err := r.loadPending(ctx)
	if err != nil {
		return r.failed(err)
	}
	if !ok {
		return r.finish(ResultNothingPending, domain.MsgNoPendingPayment)
	}
	if !confirmed {
		r.clearPending(ctx)
		r.setState(StateIdle)
		err := domain.AmbiguousError(MsgPaymentNotConfirmed)
		metrics.CheckoutOutcomes.WithLabelValues(strategyExternal, string(ResultDeclined)).Inc()
		return Outcome{Result: ResultDeclined, State: StateIdle, Message: err.Message}, err
	}

	r.setState(StateReconciling)
	return r.submit(ctx, rec, paymentRef)
}

// State — текущее состояние сверки.
func (r *Reconciler) State() State {
	r.stMu.Lock()
	defer r.stMu.Unlock()
	return r.state
}

// Pending — сохранённый снимок внешней оплаты или nil.
func (r *Reconciler) Pending(ctx context.Context) (*domain.PendingExternalPayment, error) {
	rec, ok, err := r.loadPending(ctx)
	if err != nil || !ok {
		return nil, err
	}
	return &rec, nil
}

// ------вспомогательные функции------

// submit — воспроизвести снимок в корзине и провести продажу; всегда заканчивается в Idle.
// Запись снимка удаляется при любом ответе бэкенда; при отказе корзина остаётся воспроизведённой.
func (r *Reconciler) submit(ctx context.Context, rec domain.PendingExternalPayment, paymentRef string) (Outcome, error) {
	sess := r.session.Current()
	if sess == nil || sess.UserID == 0 {
		r.clearPending(ctx)
		return r.failed(domain.ValidationError(domain.ErrNotAuthenticated, domain.MsgNotAuthenticated))
	}

	if r.cart.Replace(ctx, rec.Lines) == 0 {
		r.clearPending(ctx)
		return r.failed(domain.ValidationError(domain.ErrEmptyCart, domain.MsgEmptyCart))
	}

	ref := strings.TrimSpace(paymentRef)
	if ref == "" {
		ref = rec.ExternalReference
	}
	req := &domain.SaleRequest{
		UserID: sess.UserID,
		Items:  domain.SaleItemsFromLines(r.cart.Snapshot().Lines),
		Payment: domain.PaymentDetails{
			Method:            domain.MethodMercadoPago,
			ExternalReference: ref,
		},
	}

	inv, err := submitSale(ctx, r.sales, req)
	r.clearPending(ctx)
	if err != nil {
		r.log.Warnf(ctx, "external sale rejected ref=%s: %v", ref, err)
		return r.failed(err)
	}

	r.cart.Clear(ctx)
	r.setState(StateIdle)
	metrics.CheckoutOutcomes.WithLabelValues(strategyExternal, string(ResultCompleted)).Inc()
	r.log.Infof(ctx, "external sale completed invoice=%d ref=%s", inv.ID, ref)
	return Outcome{Result: ResultCompleted, State: StateIdle, Message: MsgSaleCompleted, Invoice: inv}, nil
}

// loadPending — пустой снимок считается отсутствующим и удаляется.
func (r *Reconciler) loadPending(ctx context.Context) (domain.PendingExternalPayment, bool, error) {
	var rec domain.PendingExternalPayment
	ok, err := r.store.Load(ctx, localstate.KeyPendingPayment, &rec)
	if err != nil {
		return rec, false, domain.CacheError(err, "no se pudo leer el pago pendiente")
	}
	if ok && len(rec.Lines) == 0 {
		r.store.Discard(ctx, localstate.KeyPendingPayment, domain.ErrEmptyCart)
		return rec, false, nil
	}
	return rec, ok, nil
}

func (r *Reconciler) clearPending(ctx context.Context) {
	if err := r.store.Remove(ctx, localstate.KeyPendingPayment); err != nil {
		r.log.Warnf(ctx, "pending payment remove failed: %v", err)
	}
}

func (r *Reconciler) failed(err error) (Outcome, error) {
	r.setState(StateIdle)
	metrics.CheckoutOutcomes.WithLabelValues(strategyExternal, string(resultOf(err))).Inc()
	return Outcome{Result: ResultFailed, State: StateIdle, Message: domain.UserMessage(err, domain.MsgSaleError)}, err
}

func (r *Reconciler) finish(res Result, msg string) (Outcome, error) {
	r.setState(StateIdle)
	if res != ResultNothingPending {
		metrics.CheckoutOutcomes.WithLabelValues(strategyExternal, string(res)).Inc()
	}
	return Outcome{Result: res, State: StateIdle, Message: msg}, nil
}

func (r *Reconciler) setState(s State) {
	r.stMu.Lock()
	r.state = s
	r.stMu.Unlock()
}

// preferenceRequest — цена позиции с IVA, округлённая до целых песо.
func (r *Reconciler) preferenceRequest(rec domain.PendingExternalPayment) *domain.PreferenceRequest {
	factor := decimal.NewFromInt(1).Add(r.cart.TaxRate())
	items := make([]domain.PreferenceItem, 0, len(rec.Lines))
	for _, l := range rec.Lines {
		title := l.Description
		if title == "" {
			title = "Producto"
		}
		items = append(items, domain.PreferenceItem{
			Title:       title,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice.Mul(factor).Round(0),
			Currency:    r.cfg.Currency,
			Description: fmt.Sprintf("%s - Cantidad: %d", title, l.Quantity),
		})
	}
	return &domain.PreferenceRequest{
		Items:             items,
		ExternalReference: rec.ExternalReference,
		ReturnURLs: domain.ReturnURLs{
			Success: r.returnURL(domain.ReturnSuccess),
			Pending: r.returnURL(domain.ReturnPending),
			Failure: r.returnURL(domain.ReturnFailure),
		},
	}
}

func (r *Reconciler) returnURL(status domain.ReturnStatus) string {
	q := url.Values{}
	q.Set("payment", string(status))
	q.Set("terminal", r.store.TerminalID())
	return strings.TrimRight(r.cfg.PublicURL, "/") + ReturnPath + "?" + q.Encode()
}

func (r *Reconciler) redirectURL(preferenceID string) string {
	return r.cfg.CheckoutURL + "?pref_id=" + url.QueryEscape(preferenceID)
}
