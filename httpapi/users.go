package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/soleares/authgate"
)

func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond(c, 0, authgate.Fail[struct{}](authgate.NewBadRequest("user id must be a positive integer")))
		return 0, false
	}
	return id, true
}

func (h *Handler) listUsers(c *gin.Context) {
	if email := c.Query("email"); email != "" {
		respond(c, http.StatusOK, h.svc.Users().GetUserByEmail(c.Request.Context(), email))
		return
	}
	respond(c, http.StatusOK, h.svc.Users().GetAllUsers(c.Request.Context()))
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, h.svc.Users().GetUserByID(c.Request.Context(), id))
}

func (h *Handler) createUser(c *gin.Context) {
	var creds authgate.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		respond(c, 0, authgate.Fail[struct{}](authgate.NewBadRequest("malformed user payload")))
		return
	}
	respond(c, http.StatusCreated, h.svc.CreateUser(c.Request.Context(), creds))
}

func (h *Handler) editUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var update authgate.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respond(c, 0, authgate.Fail[struct{}](authgate.NewBadRequest("malformed user payload")))
		return
	}
	respond(c, http.StatusOK, h.svc.EditUser(c.Request.Context(), id, update))
}

func (h *Handler) deleteUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, h.svc.Users().DeleteUser(c.Request.Context(), id))
}
