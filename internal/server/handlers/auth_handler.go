package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/inventory/internal/domain/models"
	"github.com/mamadbah2/inventory/internal/service/session"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	AccessToken  string              `json:"accessToken,omitempty"`
	ExpiresAt    *time.Time          `json:"expiresAt,omitempty"`
	UserID       string              `json:"userId"`
	Email        string              `json:"email"`
	Role         models.Role         `json:"role"`
	Capabilities models.Capabilities `json:"capabilities"`
}

func newSessionResponse(sess *session.Session, withToken bool) sessionResponse {
	resp := sessionResponse{
		UserID:       sess.User.ID,
		Email:        sess.User.Email,
		Role:         sess.Role,
		Capabilities: sess.Capabilities,
	}
	if withToken {
		expires := sess.ExpiresAt.UTC()
		resp.AccessToken = sess.AccessToken
		resp.ExpiresAt = &expires
	}
	return resp
}

// Login exchanges email and password for a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, models.NewValidationError("body", "must be a JSON object with email and password"))
		return
	}

	sess, err := h.sessions.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, newSessionResponse(sess, true))
}

// Logout ends the caller's session.
func (h *Handler) Logout(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		h.fail(c, models.ErrUnauthenticated)
		return
	}

	if err := h.sessions.SignOut(c.Request.Context(), sess.AccessToken); err != nil {
		h.logger.Warn("sign out incomplete", zap.String("user_id", sess.User.ID), zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

// Me describes the caller's session.
func (h *Handler) Me(c *gin.Context) {
	sess := currentSession(c)
	if sess == nil {
		h.fail(c, models.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, newSessionResponse(sess, false))
}
