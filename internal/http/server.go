package httpapi

import (
	"errors"
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"qrmenu/internal/domain"
	"qrmenu/internal/repository"
	"qrmenu/internal/service"
	"qrmenu/internal/upload"
)

// Deps are the services the HTTP surface delegates to.
type Deps struct {
	Restaurants *service.RestaurantService
	Categories  *service.CategoryService
	Items       *service.ItemService
	Stats       *service.StatsService
	Menus       *service.MenuService
	Uploads     *upload.Pipeline
	Store       repository.Pinger
}

type Options struct {
	CORSOrigins []string
	SlowRequest time.Duration
}

type Server struct {
	engine *gin.Engine
	deps   Deps
}

func NewServer(deps Deps, opts Options) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), RequestTimer(opts.SlowRequest), corsMiddleware(opts.CORSOrigins))
	s := &Server{engine: r, deps: deps}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if s.deps.Uploads != nil {
		s.engine.Static("/uploads", s.deps.Uploads.Dir())
	}

	api := s.engine.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/stats", s.stats)
		api.GET("/menu/:slug", s.menuView)
		api.POST("/upload", s.uploadImage)

		restaurants := api.Group("/restaurants")
		restaurants.GET("", s.listRestaurants)
		restaurants.POST("", s.createRestaurant)
		restaurants.GET(":slug", s.getRestaurant)
		restaurants.GET(":slug/link", s.restaurantLink)
		restaurants.PATCH(":id", s.updateRestaurant)
		restaurants.DELETE(":id", s.deleteRestaurant)

		categories := api.Group("/categories")
		categories.GET("", s.listCategories)
		categories.POST("", s.createCategory)
		categories.GET(":id", s.getCategory)
		categories.PATCH(":id", s.updateCategory)
		categories.DELETE(":id", s.deleteCategory)

		items := api.Group("/items")
		items.GET("", s.listItems)
		items.POST("", s.createItem)
		items.GET(":id", s.getItem)
		items.PATCH(":id", s.updateItem)
		items.DELETE(":id", s.deleteItem)
	}
}

// RequestTimer logs requests slower than threshold. Zero disables it.
func RequestTimer(threshold time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		if threshold > 0 && latency > threshold {
			log.Printf("[SLOW] %s %s | status %d | %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), latency)
		}
	}
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept-Language"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// envelope shapes, used by the swagger annotations
type dataResponse struct {
	Success bool `json:"success" example:"true"`
	Data    any  `json:"data"`
}

type messageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error"`
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, dataResponse{Success: true, Data: data})
}

func respondMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, messageResponse{Success: true, Message: msg})
}

// respondError writes the failure envelope. Server-side failures are logged
// and their details kept out of the response.
func respondError(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		msg = "internal server error"
		if errors.Is(err, upload.ErrIO) {
			msg = "failed to upload image"
		}
	}
	c.AbortWithStatusJSON(status, errorResponse{Success: false, Error: msg})
}

func badJSON(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Success: false, Error: "invalid json: " + err.Error()})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
