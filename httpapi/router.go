package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soleares/authgate"
	"github.com/soleares/authgate/jwt"
	"github.com/soleares/authgate/middleware"
	"github.com/soleares/authgate/provider"
)

// Handler bundles the service and its collaborators for route handlers.
type Handler struct {
	svc       *authgate.Service
	providers *provider.Registry
	cfg       authgate.Config
}

// NewHandler builds the HTTP handler set. providers may be nil when no
// OAuth client is configured; the stub routes then answer 404.
func NewHandler(svc *authgate.Service, providers *provider.Registry, cfg authgate.Config) *Handler {
	if providers == nil {
		providers = provider.NewRegistry()
	}
	return &Handler{svc: svc, providers: providers, cfg: cfg}
}

// Router assembles the full route tree.
func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", h.health)

	auth := router.Group("/auth")
	{
		auth.POST("/local/signup", h.localSignup)
		auth.POST("/local/signin", h.localSignin)
		auth.GET("/:provider/login", h.oauthLogin)
		auth.GET("/:provider/redirect", h.oauthRedirect)
	}

	tokenGuard := middleware.GinTokenAuth(h.svc.Sessions(), h.cfg.RefreshThreshold, func(claims *jwt.Claims) {
		h.svc.NoteTokenRefresh(claims.ID, claims.Email, claims.Device)
	})
	session := router.Group("/auth")
	session.Use(tokenGuard)
	{
		session.GET("/session", h.session)
		session.POST("/logout", h.logout)
	}

	users := router.Group("/users")
	users.Use(middleware.GinAPIKey(h.cfg.APIKey))
	{
		users.GET("", h.listUsers)
		users.GET("/:id", h.getUser)
		users.POST("", h.createUser)
		users.PATCH("/:id", h.editUser)
		users.DELETE("/:id", h.deleteUser)
	}

	return router
}

func (h *Handler) health(c *gin.Context) {
	if err := h.svc.Sessions().Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respond writes an envelope with a status derived from its error, or
// okStatus when the call succeeded.
func respond[T any](c *gin.Context, okStatus int, resp authgate.Response[T]) {
	status := okStatus
	if !resp.Success {
		status = http.StatusInternalServerError
		if resp.Err != nil && resp.Err.Status != 0 {
			status = resp.Err.Status
		}
	}
	c.JSON(status, resp)
}
