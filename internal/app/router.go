package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"orbo/internal/config"
	"orbo/internal/handlers"
	"orbo/internal/middleware"
)

// NewRouter mounts every HTTP route on a new gin engine.
func NewRouter(svcs *Services, cfg *config.Config) *gin.Engine {
	cronHandler := handlers.NewCronHandler(svcs.AdminSync)
	backfillHandler := handlers.NewBackfillHandler(svcs.Backfill, svcs.Organizations)
	participantHandler := handlers.NewParticipantHandler(svcs.Participants, svcs.Organizations)
	telegramHandler := handlers.NewTelegramHandler(svcs.AdminCache, svcs.Migrations)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	cronAuth := middleware.CronAuthMiddleware(cfg.CronSecret)
	userAuth := middleware.AuthMiddleware(cfg.JWTSecret)

	api.GET("/cron/sync-admin-rights", cronAuth, cronHandler.SyncAdminRights)
	api.POST("/participants/backfill-orphans", userAuth, backfillHandler.BackfillOrphans)

	v1 := api.Group("/v1")

	orgs := v1.Group("/orgs/:org_id", userAuth)
	orgs.GET("/participants", participantHandler.ListParticipants)
	orgs.POST("/participants/:participant_id/merge", participantHandler.MergeParticipant)

	tg := v1.Group("/telegram")
	tg.GET("/chats/:chat_id/admins/:tg_user_id", userAuth, telegramHandler.CheckAdmin)
	tg.GET("/chats/:chat_id/resolve", userAuth, telegramHandler.ResolveChat)
	tg.GET("/migrations", cronAuth, telegramHandler.ListMigrations)

	return router
}
