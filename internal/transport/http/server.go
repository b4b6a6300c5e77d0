package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"gopherchat/internal/ai"
	appsvc "gopherchat/internal/app"
	"gopherchat/internal/bootstrap"
	"gopherchat/internal/cache"
	"gopherchat/internal/repository"
	"gopherchat/internal/transport/http/handler"
	"gopherchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	chatRepo := repository.NewChatRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	chatService := appsvc.NewChatService(
		chatRepo,
		messageRepo,
		historyCache,
		ai.NewOpenAICompatibleClient(),
		ai.ChatConfig{
			BaseURL:   app.Config.LLM.BaseURL,
			APIKey:    app.Config.LLM.APIKey,
			Model:     app.Config.LLM.Model,
			MaxTokens: app.Config.LLM.MaxTokens,
		},
	)

	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)
	authRequired := middleware.AuthBearer(app.Config.Auth.JWTSecret, authService)

	router.POST("/token", authHandler.Token)
	router.POST("/users/", authHandler.CreateUser)
	router.GET("/users/me/", authRequired, authHandler.Me)

	chats := router.Group("/chats", authRequired)
	chats.POST("/", chatHandler.CreateChat)
	chats.GET("/", chatHandler.ListChats)
	chats.POST("/:chat_id/messages/", chatHandler.CreateMessage)
	chats.GET("/:chat_id/messages/", chatHandler.ListMessages)

	return router
}
