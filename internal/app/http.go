package app

import (
	"context"

	"mailchimp-auth/internal/auth/credentials"
	"mailchimp-auth/internal/auth/handler"
	"mailchimp-auth/internal/auth/provider"
	"mailchimp-auth/internal/auth/provider/google"
	"mailchimp-auth/internal/auth/provider/mailchimp"
	"mailchimp-auth/internal/auth/resolver"
	"mailchimp-auth/internal/auth/state"
	"mailchimp-auth/internal/avatar"
	"mailchimp-auth/internal/config"
	"mailchimp-auth/internal/logger"
	"mailchimp-auth/internal/middleware"
	"mailchimp-auth/internal/session"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	sessionStore := session.NewRedisStore(infra.Redis.Client)
	stateStore := state.NewRedisStore(infra.Redis.Client)
	identityResolver := resolver.NewDBResolver(infra.DB)
	credentialService := credentials.NewService(infra.DB)
	avatarIngestor := avatar.NewIngestor(
		avatar.NewPGStore(infra.DB),
		cfg.AvatarMaxBytes,
	)

	// MailChimp is always registered; with blank credentials the handler
	// refuses to start a login for it.
	mailchimpProvider := mailchimp.New(
		cfg.MailChimpClientID,
		cfg.MailChimpClientSecret,
		cfg.MailChimpRedirectURL,
	)
	if !mailchimpProvider.Configured() {
		logger.Warn("mailchimp provider registered without credentials", nil)
	}

	providerList := []provider.OAuthProvider{mailchimpProvider}

	// Google is optional: OIDC discovery needs full credentials up front.
	if cfg.GoogleClientID != "" {
		googleProvider, err := google.New(
			ctx,
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleRedirectURL,
		)
		if err != nil {
			return nil, nil, err
		}
		providerList = append(providerList, googleProvider)
	}

	registry := provider.NewRegistry(providerList...)

	authHandler := handler.NewHandler(
		registry,
		stateStore,
		sessionStore,
		identityResolver,
		credentialService,
		avatarIngestor,
	)

	authMiddleware := middleware.NewAuthMiddleware(sessionStore)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.GinRequireAuth(authMiddleware))

	api.GET("/me", func(c *gin.Context) {
		userID, _ := middleware.UserIDFromContext(c.Request.Context())
		c.JSON(200, gin.H{
			"user_id": userID,
		})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.DB.Close()
	}, nil
}
