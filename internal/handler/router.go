package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/analytica/backend/internal/service"
)

// RouterDeps carries the services behind the HTTP surface. Artifact services
// left nil are not mounted.
type RouterDeps struct {
	Logger             *zap.Logger
	Auth               *service.AuthService
	Images             *service.ImageService
	Tabular            *service.TabularService
	Texts              *service.TextService
	DB                 pinger
	AllowedOrigins     []string
	RateLimitPerMinute int
	MaxUploadBytes     int64
}

// NewRouter builds the engine. Every route registered on the protected group
// runs behind AuthMiddleware.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(CORSMiddleware(deps.AllowedOrigins, true))

	r.GET("/", Root)
	r.GET("/ping", Ping)
	r.GET("/openapi.json", OpenAPIDoc)
	if deps.DB != nil {
		r.GET("/ready", Ready(deps.DB))
	}

	authHandler := NewAuthHandler(deps.Auth, logger)
	limiter := NewRateLimiter(deps.RateLimitPerMinute).Handler()

	api := r.Group("/api")
	api.POST("/user/register", limiter, authHandler.Register)
	api.POST("/user/login", limiter, authHandler.Login)

	protected := api.Group("")
	protected.Use(AuthMiddleware(deps.Auth, logger))
	protected.POST("/user/logout", authHandler.Logout)
	protected.GET("/user/me", authHandler.Me)

	if deps.Images != nil {
		h := NewImageHandler(deps.Images, deps.MaxUploadBytes, logger)
		images := protected.Group("/image")
		images.POST("/create_image", h.CreateImage)
		images.PUT("/update_image/:id", h.UpdateImage)
		images.GET("/list_all_images", h.ListImages)
		images.GET("/get_image/:id", h.GetImage)
		images.DELETE("/delete_image/:id", h.DeleteImage)
	}

	if deps.Tabular != nil {
		h := NewTabularHandler(deps.Tabular, deps.MaxUploadBytes, logger)
		tabular := protected.Group("/tabular")
		tabular.POST("/create_tabular", h.CreateTabular)
		tabular.PUT("/update_tabular/:id", h.UpdateTabular)
		tabular.GET("/list_all_tabular", h.ListTabular)
		tabular.GET("/get_tabular/:id", h.GetTabular)
		tabular.DELETE("/delete_tabular/:id", h.DeleteTabular)
	}

	if deps.Texts != nil {
		h := NewTextHandler(deps.Texts, logger)
		texts := protected.Group("/text")
		texts.POST("/create_text", h.CreateText)
		texts.GET("/list_all_texts", h.ListTexts)
		texts.GET("/get_text/:id", h.GetText)
		texts.DELETE("/delete_text/:id", h.DeleteText)
		texts.GET("/similar_texts/:id", h.SimilarTexts)
		texts.POST("/summarize_text", h.SummarizeText)
		texts.POST("/extract_keywords", h.ExtractKeywords)
		texts.POST("/analyze_sentiment", h.AnalyzeSentiment)
		texts.POST("/tsne_display", h.TSNEDisplay)
	}

	return r
}
