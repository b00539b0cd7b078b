// Package web provides API routes for the web server.
package web

import (
	"context"
	"net/http"
	"strconv"

	"github.com/PancyStudios/ArcaneBotGo/internal/progression"
	"github.com/PancyStudios/ArcaneBotGo/pkg/database"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	apperrors "github.com/PancyStudios/ArcaneBotGo/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// API holds what the routes read from. Bot and Hub may be nil.
type API struct {
	Store       database.Store
	Progression *progression.Engine
	Bot         *discord.ExtendedClient
	Hub         *Hub
}

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, a *API) {
	api := s.Group("/api")
	{
		api.GET("/status", a.statusHandler)
		api.GET("/health", healthHandler)
		api.GET("/bot", a.botInfoHandler)
		api.GET("/guilds/:guildID/leaderboard", a.leaderboardHandler)
		api.GET("/guilds/:guildID/users/:userID", a.userHandler)
	}

	s.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if a.Hub != nil {
		s.GET("/ws/leaderboard/:guildID", func(c *gin.Context) {
			a.Hub.Serve(c.Writer, c.Request, c.Param("guildID"))
		})
	}
}

// LeaderboardSnapshot feeds the hub with the default sized top of a guild
func LeaderboardSnapshot(engine *progression.Engine) SnapshotFunc {
	return func(ctx context.Context, guildID string) (interface{}, error) {
		return engine.TopN(ctx, guildID, progression.DefaultLeaderboard)
	}
}

// statusFor maps an error kind to an HTTP status
func statusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindInput:
		return http.StatusBadRequest
	case apperrors.KindPersistence:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func abortWith(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{
		"error": apperrors.UserMessage(err),
	})
}

// statusHandler returns the bot and database status
func (a *API) statusHandler(c *gin.Context) {
	dbStatus, dbOnline := "🔴 | Desconectado", false
	backend := ""
	if a.Store != nil {
		dbStatus, dbOnline = a.Store.Status()
		backend = a.Store.Backend()
	}

	botOnline := false
	if a.Bot != nil {
		botOnline = a.Bot.IsReady()
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"database": gin.H{
			"status":   dbStatus,
			"isOnline": dbOnline,
			"backend":  backend,
		},
		"bot": gin.H{
			"isOnline": botOnline,
		},
	})
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "ArcaneBot Go is running",
	})
}

// botInfoHandler returns information about the bot
func (a *API) botInfoHandler(c *gin.Context) {
	if a.Bot == nil || !a.Bot.IsReady() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Bot Offline",
			"message": "The bot is not available right now.",
		})
		return
	}

	user := a.Bot.Session.State.User

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"avatar":   user.Avatar,
		"guilds":   a.Bot.GuildCount(),
		"latency":  a.Bot.Latency().Milliseconds(),
		"uptime":   a.Bot.Uptime().String(),
		"isReady":  true,
	})
}

// leaderboardHandler returns the top users of a guild
func (a *API) leaderboardHandler(c *gin.Context) {
	guildID := c.Param("guildID")

	limit := progression.DefaultLeaderboard
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			abortWith(c, apperrors.Input("limit must be an integer."))
			return
		}
		limit = n
	}
	limit = progression.ClampLimit(limit)

	entries, err := a.Progression.TopN(c.Request.Context(), guildID, limit)
	if err != nil {
		abortWith(c, err)
		return
	}

	total, err := a.Store.CountXP(c.Request.Context(), guildID)
	if err != nil {
		abortWith(c, apperrors.Persistence(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guildId": guildID,
		"limit":   limit,
		"total":   total,
		"entries": entries,
	})
}

// userHandler returns the standing and warn count of a member
func (a *API) userHandler(c *gin.Context) {
	ctx := c.Request.Context()
	guildID, userID := c.Param("guildID"), c.Param("userID")

	standing, err := a.Progression.Standing(ctx, guildID, userID)
	if err != nil {
		abortWith(c, err)
		return
	}

	warns, err := a.Store.GetWarns(ctx, guildID, userID)
	if err != nil {
		abortWith(c, apperrors.Persistence(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"guildId":  guildID,
		"userId":   userID,
		"standing": standing,
		"warns":    database.WarnsOf(warns),
	})
}
