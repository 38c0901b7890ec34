package app

import (
	"context"
	"net/http"
	"time"

	"github.com/sanioooook/TodoApp/internal/cache"
	"github.com/sanioooook/TodoApp/internal/config"
	"github.com/sanioooook/TodoApp/internal/handlers"
	"github.com/sanioooook/TodoApp/internal/identity"
	"github.com/sanioooook/TodoApp/internal/logging"
	"github.com/sanioooook/TodoApp/internal/service"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, log *logging.Logger, st stores, listCache *cache.ListCache) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg, st.ping))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	userSvc := service.NewUserService(st.users, listCache, log)
	registerUserRoutes(api, handlers.NewUserHandler(userSvc))

	listSvc := service.NewTodoListService(st.lists, st.users, listCache,
		service.WithLogger(log),
		service.WithScopedReads(cfg.Store.ScopedReads),
	)
	protected := api.Group("", identity.RequireUser())
	registerListRoutes(protected, handlers.NewTodoListHandler(listSvc))
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Todo API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config, ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "env": cfg.App.Env, "error": "store unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerListRoutes(api *gin.RouterGroup, h *handlers.TodoListHandler) {
	api.POST("/lists", h.Create)
	api.GET("/lists", h.List)
	api.GET("/lists/:id", h.GetByID)
	api.PUT("/lists/:id", h.Update)
	api.DELETE("/lists/:id", h.Delete)
	api.POST("/lists/:id/share", h.Share)
	api.POST("/lists/:id/unshare", h.Unshare)
}

func registerUserRoutes(api *gin.RouterGroup, h *handlers.UserHandler) {
	api.POST("/users", h.Create)
	api.GET("/users", h.List)
	api.GET("/users/:id", h.GetByID)
	api.PUT("/users/:id", h.Update)
	api.DELETE("/users/:id", h.Delete)
}
