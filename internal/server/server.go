package server

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/huxiangculture/platform/internal/config"
	"github.com/huxiangculture/platform/internal/handler"
	"github.com/huxiangculture/platform/internal/metrics"
	"github.com/huxiangculture/platform/internal/middleware"
	"github.com/huxiangculture/platform/internal/repository"
	"github.com/huxiangculture/platform/internal/service"
	"github.com/huxiangculture/platform/pkg/storage"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	imageStorage := newImageStorage(cfg)

	authSvc := service.NewAuthService(userRepo, imageStorage, cfg.JWTSecret, cfg.JWTTTL)
	resourceSvc := service.NewResourceService(resourceRepo)
	postSvc := service.NewPostService(postRepo, commentRepo, userRepo, redisClient, cfg.PostCooldown)
	commentSvc := service.NewCommentService(commentRepo, postRepo, userRepo)

	authHandler := handler.NewAuthHandler(authSvc, cfg.MaxUploadBytes)
	resourceHandler := handler.NewResourceHandler(resourceSvc)
	postHandler := handler.NewPostHandler(postSvc, cfg.PostCooldown)
	commentHandler := handler.NewCommentHandler(commentSvc)
	healthHandler := handler.NewHealthHandler(db)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/health", "/metrics"},
	}))
	router.Use(metrics.Middleware())

	router.GET("/", healthHandler.Index)
	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Uploaded avatars are served straight off disk.
	router.Static(cfg.AvatarURLPrefix, cfg.AvatarDir)

	authMiddleware := middleware.NewAuthMiddleware(userRepo, cfg.JWTSecret)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/profile", authMiddleware.RequireAuth(), authHandler.GetProfile)
		auth.PUT("/profile", authMiddleware.RequireAuth(), authHandler.UpdateProfile)
		auth.POST("/upload-avatar", authMiddleware.RequireAuth(), authHandler.UploadAvatar)
		auth.POST("/logout", authMiddleware.RequireAuth(), authHandler.Logout)
	}

	resources := api.Group("/resources")
	{
		resources.GET("", resourceHandler.List)
		resources.GET("/:id", resourceHandler.Get)
		resources.POST("/:id/like", authMiddleware.RequireAuth(), resourceHandler.Like)
		resources.POST("", authMiddleware.RequireAuth(), resourceHandler.Create)
		resources.DELETE("/:id", authMiddleware.RequireAuth(), authMiddleware.RequireAdmin(), resourceHandler.Delete)
	}

	community := api.Group("/community")
	{
		community.GET("/posts", postHandler.List)
		community.GET("/posts/:id", authMiddleware.OptionalAuth(), postHandler.Get)
		community.GET("/posts/:id/related", postHandler.Related)
		community.GET("/posts/:id/comments", commentHandler.List)

		community.POST("/posts", authMiddleware.RequireAuth(), postHandler.Create)
		community.PUT("/posts/:id", authMiddleware.RequireAuth(), postHandler.Update)
		community.DELETE("/posts/:id", authMiddleware.RequireAuth(), postHandler.Delete)
		community.POST("/posts/:id/like", authMiddleware.RequireAuth(), postHandler.ToggleLike)
		community.POST("/posts/:id/comments", authMiddleware.RequireAuth(), commentHandler.Create)

		community.DELETE("/comments/:id", authMiddleware.RequireAuth(), commentHandler.Delete)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// newImageStorage prefers cloudinary when configured and falls back to local
// disk so a bare dev setup still works.
func newImageStorage(cfg *config.Config) storage.ImageStorage {
	if os.Getenv("CLOUDINARY_URL") != "" {
		imageStorage, err := storage.NewCloudinaryStorage()
		if err == nil {
			return imageStorage
		}
		log.Printf("cloudinary unavailable, falling back to local storage: %v", err)
	}

	imageStorage, err := storage.NewLocalStorage(cfg.AvatarDir, cfg.AvatarURLPrefix)
	if err != nil {
		log.Fatalf("failed to initialize avatar storage: %v", err)
	}
	return imageStorage
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
