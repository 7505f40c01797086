package main

import (
	"log"
	"strings"
	"time"

	"blogora/internal/config"
	"blogora/internal/handler"
	"blogora/internal/middleware"
	"blogora/internal/model"
	"blogora/internal/repository"
	"blogora/internal/service"
	"blogora/pkg/database"
	"blogora/pkg/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	redisClient := connectRedis(cfg.RedisURL)

	meiliClient := meilisearch.New(cfg.MeiliSearchHost, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	searchService := service.NewSearchService(meiliClient)

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	tagRepo := repository.NewTagRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	authService := service.NewAuthService(userRepo)
	authHandler := handler.NewAuthHandler(authService)

	profileService := service.NewProfileService(userRepo, imageStorage)
	profileHandler := handler.NewProfileHandler(profileService)

	taxonomyService := service.NewTaxonomyService(categoryRepo, tagRepo)
	taxonomyHandler := handler.NewTaxonomyHandler(taxonomyService)

	notificationService := service.NewNotificationService(notificationRepo, redisClient)
	notificationHandler := handler.NewNotificationHandler(notificationService, redisClient)

	fanoutService := service.NewFanoutService(postRepo, subscriptionRepo, userRepo, notificationService)

	postService := service.NewPostService(postRepo, categoryRepo, tagRepo, ratingRepo, likeRepo, searchService, redisClient)
	postHandler := handler.NewPostHandler(postService, fanoutService)

	commentService := service.NewCommentService(commentRepo, postRepo)
	commentHandler := handler.NewCommentHandler(commentService)

	ratingService := service.NewRatingService(ratingRepo, postRepo)
	likeService := service.NewLikeService(likeRepo, postRepo)
	reactionHandler := handler.NewReactionHandler(ratingService, likeService)

	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userRepo, categoryRepo)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	setupCORS(router, cfg.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware()

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// Public reads. OptionalAuth lets logged-in callers see their own drafts
	// and their own like state.
	public := api.Group("")
	public.Use(authMiddleware.OptionalAuth())
	{
		public.GET("/posts", postHandler.ListPosts)
		public.GET("/posts/top-rated", postHandler.TopRated)
		public.GET("/posts/top-liked", postHandler.TopLiked)
		public.GET("/posts/search", postHandler.SearchPosts)
		public.GET("/posts/category/:category_id", postHandler.ListByCategory)
		public.GET("/posts/author/:author_id", postHandler.ListByAuthor)
		public.GET("/posts/:id", postHandler.GetPost)
		public.GET("/posts/:id/comments", commentHandler.GetCommentTree)
		public.GET("/posts/:id/rating", reactionHandler.GetRating)
		public.GET("/posts/:id/likes", reactionHandler.GetLikes)

		public.GET("/categories", taxonomyHandler.ListCategories)
		public.GET("/tags", taxonomyHandler.ListTags)
		public.GET("/profile/:username", profileHandler.GetByUsername)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/posts", postHandler.CreatePost)
		protected.GET("/posts/drafts", postHandler.ListDrafts)
		protected.PUT("/posts/:id", postHandler.UpdatePost)
		protected.DELETE("/posts/:id", postHandler.DeletePost)
		protected.POST("/posts/:id/share", postHandler.SharePost)
		protected.POST("/posts/:id/notify", postHandler.NotifySubscribers)

		protected.POST("/posts/:id/comments", commentHandler.CreateComment)
		protected.PUT("/comments/:id", commentHandler.UpdateComment)
		protected.DELETE("/comments/:id", commentHandler.DeleteComment)

		protected.POST("/posts/:id/rating", reactionHandler.RatePost)
		protected.POST("/posts/:id/like", reactionHandler.LikePost)
		protected.DELETE("/posts/:id/like", reactionHandler.UnlikePost)

		protected.POST("/subscriptions", subscriptionHandler.Subscribe)
		protected.DELETE("/subscriptions", subscriptionHandler.Unsubscribe)
		protected.GET("/subscriptions", subscriptionHandler.ListMine)

		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PUT("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		protected.POST("/categories", taxonomyHandler.CreateCategory)
		protected.DELETE("/categories/:id", taxonomyHandler.DeleteCategory)
		protected.POST("/tags", taxonomyHandler.CreateTag)

		protected.GET("/profile/me", profileHandler.GetCurrentProfile)
		protected.PUT("/profile", profileHandler.UpdateProfile)
	}

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Category{},
		&model.Tag{},
		&model.Post{},
		&model.Comment{},
		&model.Rating{},
		&model.Like{},
		&model.Subscription{},
		&model.Notification{},
	)
}

// connectRedis is best-effort: without Redis the server still runs, it just
// loses live notification streams and post rate limiting.
func connectRedis(redisURL string) *redis.Client {
	if redisURL == "" {
		log.Println("REDIS_URL not set, running without redis")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("invalid REDIS_URL, running without redis: %v", err)
		return nil
	}

	return redis.NewClient(opts)
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := strings.Split(allowedOrigins, ",")

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
