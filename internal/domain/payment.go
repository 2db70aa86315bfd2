package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReturnStatus — маркер статуса в URL возврата с внешней страницы оплаты.
type ReturnStatus string

const (
	ReturnNone    ReturnStatus = ""
	ReturnSuccess ReturnStatus = "success"
	ReturnPending ReturnStatus = "pending"
	ReturnFailure ReturnStatus = "failure"
)

// ParseReturnStatus — нераспознанный маркер считается отсутствующим.
func ParseReturnStatus(raw string) ReturnStatus {
	switch ReturnStatus(raw) {
	case ReturnSuccess, ReturnPending, ReturnFailure:
		return ReturnStatus(raw)
	default:
		return ReturnNone
	}
}

// PendingExternalPayment — снимок корзины, сохранённый перед уходом на внешнюю оплату.
// Не больше одной записи на терминал; новая перезаписывает старую.
type PendingExternalPayment struct {
	Lines             []CartLine `json:"cartLines"`
	CreatedAt         time.Time  `json:"createdAt"`
	ExternalReference string     `json:"externalReference"`
	PreferenceID      string     `json:"preferenceId,omitempty"`
}

// PreferenceItem — позиция платёжного предпочтения (preference) Mercado Pago.
type PreferenceItem struct {
	Title       string          `json:"title"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Currency    string          `json:"currencyId"`
	Description string          `json:"description,omitempty"`
}

// ReturnURLs — адреса возврата для трёх исходов оплаты.
type ReturnURLs struct {
	Success string `json:"success"`
	Pending string `json:"pending"`
	Failure string `json:"failure"`
}

// PreferenceRequest — запрос на создание предпочтения.
type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	ExternalReference string           `json:"externalReference"`
	ReturnURLs        ReturnURLs       `json:"backUrls"`
}

// Preference — созданное предпочтение.
type Preference struct {
	ID string `json:"preferenceId"`
}
