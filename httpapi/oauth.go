package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/soleares/authgate"
)

func (h *Handler) oauthLogin(c *gin.Context) {
	p, err := h.providers.Lookup(c.Param("provider"))
	if err != nil {
		respond(c, 0, authgate.Fail[struct{}](authgate.NewNotFound("oauth provider")))
		return
	}

	// State is minted per request but not yet persisted; the redirect
	// handler below is a stub and performs no exchange.
	c.Redirect(http.StatusFound, p.LoginURL(uuid.NewString()))
}

func (h *Handler) oauthRedirect(c *gin.Context) {
	p, err := h.providers.Lookup(c.Param("provider"))
	if err != nil {
		respond(c, 0, authgate.Fail[struct{}](authgate.NewNotFound("oauth provider")))
		return
	}

	c.JSON(http.StatusNotImplemented, authgate.Response[struct{}]{
		Message: p.Name() + " oauth code exchange is not implemented",
	})
}
