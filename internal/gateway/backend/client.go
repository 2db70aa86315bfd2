// Package backend — HTTP/JSON клиент удалённого бэкенда: аутентификация, каталог, продажи, платежи.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/Gunvolt24/pos_terminal/internal/ports"
	"github.com/Gunvolt24/pos_terminal/pkg/ctxmeta"
	"github.com/Gunvolt24/pos_terminal/pkg/metrics"
	"github.com/Gunvolt24/pos_terminal/pkg/telemetry"
)

var (
	_ ports.AuthGateway       = (*Client)(nil)
	_ ports.CatalogGateway    = (*Client)(nil)
	_ ports.SalesGateway      = (*Client)(nil)
	_ ports.PreferenceGateway = (*Client)(nil)
)

// Сообщения по статусу ответа, если бэкенд не прислал своё.
const (
	MsgBadRequest    = "Solicitud inválida"
	MsgUnauthorized  = "Sesión expirada. Por favor, inicia sesión nuevamente."
	MsgForbidden     = "No tienes permisos para realizar esta acción."
	MsgNotFound      = "Recurso no encontrado."
	MsgConflict      = "Conflicto con el recurso existente."
	MsgUnprocessable = "Error de validación."
	MsgServerError   = "Error interno del servidor. Intenta más tarde."
	MsgUnavailable   = "Servicio no disponible. Intenta más tarde."
	MsgUnreachable   = "No se puede conectar con el servidor"
)

const (
	headerRequestID = "X-Request-ID"
	maxErrorBody    = 1 << 20
)

// Client — клиент бэкенда; токен терминала берётся из контекста запроса.
type Client struct {
	baseURL string
	http    *http.Client
	log     ports.Logger
}

// NewClient — клиент с otel-транспортом.
func NewClient(baseURL string, timeout time.Duration, log ports.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: telemetry.HTTPTransport(nil),
		},
		log: log,
	}
}

// call — один запрос к бэкенду.
type call struct {
	endpoint  string // метка для метрик
	method    string
	path      string
	body      any
	fallback  string         // сообщение, если ни бэкенд, ни статус его не дают
	overrides map[int]string // сообщения для конкретных статусов вместо общих
}

// do — выполнить запрос и декодировать JSON-ответ в out (если не nil).
// Любая неудача — *domain.Error вида gateway.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	var body io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return domain.GatewayError(0, "", cl.fallback, nil, fmt.Errorf("%s: encode request: %w", cl.endpoint, err))
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return domain.GatewayError(0, "", cl.fallback, nil, fmt.Errorf("%s: build request: %w", cl.endpoint, err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token, ok := ctxmeta.AuthTokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if rid, ok := ctxmeta.RequestIDFromContext(ctx); ok {
		req.Header.Set(headerRequestID, rid)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.GatewayLatency.WithLabelValues(cl.endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.GatewayRequests.WithLabelValues(cl.endpoint, "error").Inc()
		c.log.Warnf(ctx, "backend %s %s failed: %v", cl.method, cl.path, err)
		return domain.GatewayError(0, "", MsgUnreachable, nil, err)
	}
	defer resp.Body.Close()
	metrics.GatewayRequests.WithLabelValues(cl.endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Warnf(ctx, "backend %s %s status=%d", cl.method, cl.path, resp.StatusCode)
		return domain.GatewayError(resp.StatusCode, backendMessage(payload), cl.statusMessage(resp.StatusCode), payload,
			fmt.Errorf("%s: status %d", cl.endpoint, resp.StatusCode))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.GatewayError(resp.StatusCode, "", cl.fallback, nil, fmt.Errorf("%s: empty response body", cl.endpoint))
		}
		return domain.GatewayError(resp.StatusCode, "", cl.fallback, nil, fmt.Errorf("%s: decode response: %w", cl.endpoint, err))
	}
	return nil
}

func (cl call) statusMessage(status int) string {
	if msg, ok := cl.overrides[status]; ok {
		return msg
	}
	if msg := StatusMessage(status); msg != "" {
		return msg
	}
	return cl.fallback
}

// StatusMessage — сообщение по HTTP-статусу; "" для прочих статусов.
func StatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return MsgBadRequest
	case http.StatusUnauthorized:
		return MsgUnauthorized
	case http.StatusForbidden:
		return MsgForbidden
	case http.StatusNotFound:
		return MsgNotFound
	case http.StatusConflict:
		return MsgConflict
	case http.StatusUnprocessableEntity:
		return MsgUnprocessable
	case http.StatusInternalServerError:
		return MsgServerError
	case http.StatusServiceUnavailable:
		return MsgUnavailable
	default:
		return ""
	}
}

// backendMessage — поле message (или error) из тела ошибки.
func backendMessage(payload []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if len(payload) == 0 || json.Unmarshal(payload, &body) != nil {
		return ""
	}
	if m := strings.TrimSpace(body.Message); m != "" {
		return m
	}
	return strings.TrimSpace(body.Error)
}
