package domain

import (
	"errors"
	"fmt"
)

// ErrorKind — закрытый набор видов ошибок ядра.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation" // проверка не прошла, состояние не менялось
	KindGateway    ErrorKind = "gateway"    // бэкенд отказал или недоступен
	KindAmbiguous  ErrorKind = "ambiguous"  // неясный исход внешней оплаты
	KindCache      ErrorKind = "cache"      // локальное хранилище состояния
)

// Базовые (sentinel) причины, по которым можно матчить через errors.Is.
var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("empty cart")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrLineNotFound      = errors.New("product not in cart")
	ErrProductNotFound   = errors.New("product not found")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrNoPaymentMethod   = errors.New("payment method required")
	ErrMissingField      = errors.New("missing required field")
	ErrPaymentDeclined   = errors.New("external payment not confirmed")
	ErrUnsupportedMethod = errors.New("unsupported payment method")
)

// Сообщения для оператора.
const (
	MsgInsufficientStock = "Stock insuficiente"
	MsgEmptyCart         = "El carrito está vacío"
	MsgInvalidQuantity   = "Cantidad inválida"
	MsgLineNotFound      = "El producto no está en el carrito"
	MsgProductNotFound   = "Producto no encontrado"
	MsgNoPaymentMethod   = "Selecciona un método de pago"
	MsgNotAuthenticated  = "Usuario no autenticado"
	MsgSaleError         = "Error al procesar la venta"
	MsgGenericGateway    = "Ocurrió un error al procesar la solicitud"
	MsgCredentials       = "Por favor ingrese sus credenciales"
	MsgBadCredentials    = "Credenciales incorrectas"
	MsgUnsupportedMethod = "Método de pago no soportado en esta caja"
	MsgNoPendingPayment  = "No hay un pago pendiente de Mercado Pago"
)

// Error — ошибка ядра: вид, сообщение для оператора и (опционально) ответ бэкенда.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int    // HTTP-статус бэкенда, для KindGateway
	Payload []byte // сырое тело ответа бэкенда
	Err     error  // причина
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// ValidationError — ошибка проверки.
func ValidationError(cause error, msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Err: cause}
}

// GatewayError — ошибка бэкенда; пустое сообщение заменяется fallback.
func GatewayError(status int, msg, fallback string, payload []byte, cause error) *Error {
	if msg == "" {
		msg = fallback
	}
	if msg == "" {
		msg = MsgGenericGateway
	}
	return &Error{Kind: KindGateway, Message: msg, Status: status, Payload: payload, Err: cause}
}

// AmbiguousError — внешний исход не подтверждён.
func AmbiguousError(msg string) *Error {
	return &Error{Kind: KindAmbiguous, Message: msg, Err: ErrPaymentDeclined}
}

// CacheError — сбой хранилища состояния.
func CacheError(cause error, msg string) *Error {
	return &Error{Kind: KindCache, Message: msg, Err: cause}
}

// AsError — достаёт *Error из цепочки.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind — относится ли ошибка к виду kind.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := AsError(err)
	return ok && de.Kind == kind
}

// UserMessage — сообщение для оператора; для «чужих» ошибок — fallback.
func UserMessage(err error, fallback string) string {
	if de, ok := AsError(err); ok && de.Message != "" {
		return de.Message
	}
	return fallback
}
