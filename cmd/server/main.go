package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/JoeLeDev/RSs/internal/config"
	"github.com/JoeLeDev/RSs/internal/database"
	"github.com/JoeLeDev/RSs/internal/handlers"
	"github.com/JoeLeDev/RSs/internal/middleware"
	"github.com/JoeLeDev/RSs/internal/models"
	"github.com/JoeLeDev/RSs/internal/realtime"
	"github.com/JoeLeDev/RSs/internal/services"
	"github.com/JoeLeDev/RSs/pkg/auth"
	"github.com/JoeLeDev/RSs/pkg/validator"
)

var serverStartTime = time.Now()

const appVersion = "1.0.0"

func main() {
	cfg := config.Load()

	setupLogging(cfg)

	logrus.Info("Connecting to MongoDB...")
	db, err := database.NewMongoDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Error disconnecting from MongoDB")
		}
	}()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.CreateIndexes(indexCtx); err != nil {
		logrus.WithError(err).Warn("Failed to create some indexes")
	}
	cancelIndexes()

	validator.Init()

	verifier := newVerifier(cfg)

	registry := realtime.NewRegistry()
	go registry.Run()

	users := db.Database.Collection("users")
	groups := db.Database.Collection("groups")
	posts := db.Database.Collection("posts")
	messages := db.Database.Collection("messages")
	notifications := db.Database.Collection("notifications")

	notificationService := services.NewNotificationService(notifications, registry)
	userService := services.NewUserService(users)
	friendshipService := services.NewFriendshipService(users, notificationService)
	groupService := services.NewGroupService(groups, users, posts, notificationService)
	postService := services.NewPostService(posts, groups, notificationService)
	messageService := services.NewMessageService(messages, users, notificationService)

	authHandler := handlers.NewAuthHandler(verifier, userService)
	userHandler := handlers.NewUserHandler(userService, friendshipService)
	groupHandler := handlers.NewGroupHandler(groupService)
	postHandler := handlers.NewPostHandler(postService)
	messageHandler := handlers.NewMessageHandler(messageService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	wsHandler := handlers.NewWebSocketHandler(verifier, users, registry)

	router := setupRouter(cfg, routerDeps{
		verifier:     verifier,
		users:        users,
		registry:     registry,
		auth:         authHandler,
		user:         userHandler,
		group:        groupHandler,
		post:         postHandler,
		message:      messageHandler,
		notification: notificationHandler,
		websocket:    wsHandler,
	})

	srv := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logrus.WithFields(logrus.Fields{
			"addr":    srv.Addr,
			"version": appVersion,
		}).Info("Server starting")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warn("Server forced to shutdown")
	} else {
		logrus.Info("Server gracefully stopped")
	}
}

func setupLogging(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		gin.SetMode(gin.DebugMode)
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// newVerifier picks the token verifier: the external identity provider when
// configured, the local JWT secret otherwise.
func newVerifier(cfg *config.Config) auth.Verifier {
	if cfg.AuthVerifyURL != "" {
		logrus.WithField("url", cfg.AuthVerifyURL).Info("Using remote token verification")
		return auth.NewRemoteVerifier(cfg.AuthVerifyURL)
	}
	return auth.NewJWTManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiration)*time.Hour)
}

type routerDeps struct {
	verifier     auth.Verifier
	users        *mongo.Collection
	registry     *realtime.Registry
	auth         *handlers.AuthHandler
	user         *handlers.UserHandler
	group        *handlers.GroupHandler
	post         *handlers.PostHandler
	message      *handlers.MessageHandler
	notification *handlers.NotificationHandler
	websocket    *handlers.WebSocketHandler
}

func setupRouter(cfg *config.Config, deps routerDeps) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	if cfg.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitDuration)
		router.Use(limiter.RateLimit())
	}

	// Websocket endpoint, authenticated by token query parameter.
	router.GET("/ws", deps.websocket.HandleWebSocket)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime":    time.Since(serverStartTime).String(),
			"version":   appVersion,
			"stats": gin.H{
				"websocket_connections": deps.registry.ConnectionsCount(),
			},
		})
	})

	api := router.Group("/api")
	{
		// Public routes.
		api.POST("/auth/sync", deps.auth.Sync)

		// Anonymous-readable content. OptionalAuth loads the account when a
		// token is present so hidden-comment filtering can see the viewer.
		public := api.Group("")
		public.Use(middleware.OptionalAuth(deps.verifier, deps.users))
		{
			public.GET("/groups", deps.group.GetGroups)
			public.GET("/groups/:id", deps.group.GetGroup)
			public.GET("/groups/:id/members", deps.group.GetMembers)
			public.GET("/groups/:id/posts", deps.post.GetGroupFeed)
			public.GET("/posts", deps.post.GetDashboardFeed)
			public.GET("/posts/:id", deps.post.GetPost)
		}

		// Everything below needs a verified account.
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(deps.verifier, deps.users))
		{
			protected.GET("/users/me", deps.user.GetProfile)
			protected.PUT("/users/me", deps.user.UpdateProfile)
			protected.GET("/users/me/groups", deps.group.GetMyGroups)
			protected.GET("/users/search", deps.user.SearchUsers)
			protected.GET("/users/:id", deps.user.GetUser)

			protected.GET("/users/friends", deps.user.GetFriends)
			protected.POST("/users/friends/request", deps.user.SendFriendRequest)
			protected.POST("/users/friends/accept", deps.user.AcceptFriendRequest)
			protected.POST("/users/friends/reject", deps.user.RejectFriendRequest)
			protected.POST("/users/friends/cancel", deps.user.CancelFriendRequest)
			protected.POST("/users/friends/remove", deps.user.RemoveFriend)

			protected.POST("/groups", deps.group.CreateGroup)
			protected.PUT("/groups/:id", deps.group.UpdateGroup)
			protected.DELETE("/groups/:id", deps.group.DeleteGroup)
			protected.POST("/groups/:id/join", deps.group.JoinGroup)
			protected.POST("/groups/:id/leave", deps.group.LeaveGroup)
			protected.PATCH("/groups/:id/roles", deps.group.ChangeRole)
			protected.DELETE("/groups/:id/members/:user_id", deps.group.KickMember)

			protected.POST("/posts", deps.post.CreatePost)
			protected.PUT("/posts/:id", deps.post.UpdatePost)
			protected.DELETE("/posts/:id", deps.post.DeletePost)
			protected.POST("/posts/:id/like", deps.post.LikePost)
			protected.POST("/posts/:id/unlike", deps.post.UnlikePost)
			protected.POST("/posts/:id/comments", deps.post.AddComment)
			protected.PUT("/posts/:id/comments/:comment_id", deps.post.UpdateComment)
			protected.DELETE("/posts/:id/comments/:comment_id", deps.post.DeleteComment)
			protected.PATCH("/posts/:id/comments/:comment_id/hide", deps.post.HideComment)

			protected.POST("/messages", deps.message.SendMessage)
			protected.GET("/messages", deps.message.GetMessages)
			protected.GET("/messages/:user_id", deps.message.GetConversation)

			protected.GET("/notifications", deps.notification.GetNotifications)
			protected.GET("/notifications/unread-count", deps.notification.GetUnreadCount)
			protected.PUT("/notifications/:id/read", deps.notification.MarkAsRead)
			protected.PUT("/notifications/read-all", deps.notification.MarkAllAsRead)
			protected.DELETE("/notifications/:id", deps.notification.DeleteNotification)
		}

		// Admin-only maintenance endpoints.
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(deps.verifier, deps.users))
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/users", deps.user.SearchUsers)
			admin.PATCH("/users/:id/role", deps.user.SetUserRole)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Endpoint not found",
			"path":  c.Request.URL.Path,
		})
	})

	return router
}
