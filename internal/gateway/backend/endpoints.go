package backend

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
)

const (
	pathLogin      = "/auth/login"
	pathProducts   = "/productos"
	pathSales      = "/ventas/procesar"
	pathSalesUser  = "/ventas/user/"
	pathPreference = "/payments/create-preference"
)

type loginRequest struct {
	Email    string `json:"correo"`
	Password string `json:"contrasena"`
}

// Login — POST /auth/login. Отказ в доступе — «Credenciales incorrectas».
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	var resp domain.AuthResponse
	err := c.do(ctx, call{
		endpoint:  "auth_login",
		method:    http.MethodPost,
		path:      pathLogin,
		body:      loginRequest{Email: email, Password: password},
		fallback:  domain.MsgBadCredentials,
		overrides: map[int]string{http.StatusUnauthorized: domain.MsgBadCredentials},
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListProducts — GET /productos.
func (c *Client) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	err := c.do(ctx, call{
		endpoint: "products_list",
		method:   http.MethodGet,
		path:     pathProducts,
		fallback: "Error al cargar los productos",
	}, &products)
	if err != nil {
		return nil, err
	}
	out := products[:0]
	for _, p := range products {
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetProduct — GET /productos/{id}; 404 — (nil, nil).
func (c *Client) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	var p domain.Product
	err := c.do(ctx, call{
		endpoint: "products_get",
		method:   http.MethodGet,
		path:     pathProducts + "/" + strconv.FormatInt(productID, 10),
		fallback: domain.MsgProductNotFound,
	}, &p)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) && de.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// SubmitSale — POST /ventas/procesar.
func (c *Client) SubmitSale(ctx context.Context, req *domain.SaleRequest) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := c.do(ctx, call{
		endpoint: "sales_process",
		method:   http.MethodPost,
		path:     pathSales,
		body:     req,
		fallback: domain.MsgSaleError,
	}, &inv)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// SalesByUser — GET /ventas/user/{id}.
func (c *Client) SalesByUser(ctx context.Context, userID int64) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	err := c.do(ctx, call{
		endpoint: "sales_by_user",
		method:   http.MethodGet,
		path:     pathSalesUser + strconv.FormatInt(userID, 10),
		fallback: "Error al cargar el historial de ventas",
	}, &invoices)
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// CreatePreference — POST /payments/create-preference.
func (c *Client) CreatePreference(ctx context.Context, req *domain.PreferenceRequest) (*domain.Preference, error) {
	var pref domain.Preference
	err := c.do(ctx, call{
		endpoint: "payments_preference",
		method:   http.MethodPost,
		path:     pathPreference,
		body:     req,
		fallback: "Error al crear la preferencia de pago",
	}, &pref)
	if err != nil {
		return nil, err
	}
	return &pref, nil
}
