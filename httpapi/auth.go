package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soleares/authgate"
	"github.com/soleares/authgate/middleware"
)

func (h *Handler) localSignup(c *gin.Context) {
	var in authgate.SignupInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond(c, 0, authgate.Fail[struct{}](authgate.NewBadRequest("malformed signup payload")))
		return
	}

	resp := h.svc.LocalSignup(c.Request.Context(), c.Request.UserAgent(), in)
	respond(c, http.StatusCreated, resp)
}

func (h *Handler) localSignin(c *gin.Context) {
	var creds authgate.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		respond(c, 0, authgate.Fail[struct{}](authgate.NewBadRequest("malformed signin payload")))
		return
	}

	ctx := c.Request.Context()
	device := c.Request.UserAgent()

	// The limit check runs before credential validation, mirroring the
	// middleware ordering of the signin pipeline.
	conflict, err := h.svc.CheckSessionLimit(ctx, creds.Email, device)
	if err != nil {
		respond(c, 0, authgate.Fail[struct{}](err))
		return
	}
	if conflict != nil {
		c.JSON(http.StatusConflict, authgate.Response[authgate.SessionConflict]{
			Err:     authgate.NewConflict(conflict.Message),
			Data:    conflict,
			Message: conflict.Message,
		})
		return
	}

	user, err := h.svc.ValidateUser(ctx, creds.Email, creds.Password)
	if err != nil {
		respond(c, 0, authgate.Fail[struct{}](err))
		return
	}
	if user == nil {
		respond(c, 0, authgate.Fail[struct{}](authgate.NewUnauthorized("invalid credentials")))
		return
	}

	respond(c, http.StatusOK, h.svc.LocalLogin(ctx, user, device))
}

func (h *Handler) session(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c.Request.Context())
	if !ok {
		respond(c, 0, authgate.Fail[struct{}](authgate.NewUnauthorized("no session")))
		return
	}

	payload := claims.Payload()
	c.JSON(http.StatusOK, authgate.OK(&payload, "session is active"))
}

func (h *Handler) logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c.Request.Context())
	if !ok {
		respond(c, 0, authgate.Fail[struct{}](authgate.NewUnauthorized("no session")))
		return
	}

	respond(c, http.StatusOK, h.svc.LocalLogout(c.Request.Context(), claims.ID))
}
