package rest

import (
	"net/http"

	"github.com/Gunvolt24/pos_terminal/internal/domain"
	"github.com/Gunvolt24/pos_terminal/internal/terminal"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	Session       *domain.Session `json:"session,omitempty"`
	RoleName      string          `json:"roleName,omitempty"`
	HomeRoute     string          `json:"homeRoute"`
}

func sessionView(b *terminal.Bundle) sessionResponse {
	resp := sessionResponse{HomeRoute: b.Session.HomeRoute()}
	if sess := b.Session.Current(); sess != nil {
		resp.Authenticated = true
		resp.Session = sess
		resp.RoleName = sess.Role.String()
	}
	return resp
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad_request", "message": msgBadRequest})
		return
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	b := bundleFrom(c)
	if _, err := b.Session.Login(ctx, req.Email, req.Password); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(b))
}

func (h *Handler) logout(c *gin.Context) {
	bundleFrom(c).Session.Logout(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (h *Handler) currentSession(c *gin.Context) {
	c.JSON(http.StatusOK, sessionView(bundleFrom(c)))
}
