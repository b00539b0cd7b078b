// Package main is the entry point for the ArcaneBot Go application.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/internal/commands"
	"github.com/PancyStudios/ArcaneBotGo/internal/events"
	"github.com/PancyStudios/ArcaneBotGo/internal/moderation"
	"github.com/PancyStudios/ArcaneBotGo/internal/platform"
	"github.com/PancyStudios/ArcaneBotGo/internal/progression"
	"github.com/PancyStudios/ArcaneBotGo/pkg/bus"
	"github.com/PancyStudios/ArcaneBotGo/pkg/config"
	"github.com/PancyStudios/ArcaneBotGo/pkg/database"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/PancyStudios/ArcaneBotGo/pkg/errors"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/PancyStudios/ArcaneBotGo/pkg/mqtt"
	"github.com/PancyStudios/ArcaneBotGo/pkg/render"
	"github.com/PancyStudios/ArcaneBotGo/pkg/web"
)

const (
	startupTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(logger.Options{
		ErrorWebhookURL: cfg.ErrorWebhook,
		LogsWebhookURL:  cfg.LogsWebhook,
		Debug:           cfg.Debug,
	})
	defer log.Close()

	logger.System("Iniciando ArcaneBot Go...", "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			_ = discordClient.Stop()
		}
	})

	// Initialize database
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	store, err := database.Init(ctx, database.Options{
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
		MongoDB:    cfg.MongoDBName,
	})
	if err != nil {
		cancel()
		logger.Critical(fmt.Sprintf("Error conectando a la base de datos: %v", err), "Main")
		os.Exit(1)
	}
	defer store.Close()
	logger.Success("Base de datos conectada ("+store.Backend()+")", "Main")

	var jobs database.MuteJobStore = store
	if cfg.RedisURL != "" {
		redisJobs, err := database.OpenRedisJobs(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn(fmt.Sprintf("Redis no disponible, los mutes se guardan en %s: %v", store.Backend(), err), "Main")
		} else {
			jobs = redisJobs
			defer redisJobs.Close()
			logger.Success("Mutes programados en Redis", "Main")
		}
	}
	cancel()

	eventBus := bus.New()

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken, cfg.Prefix)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}
	plat := platform.NewDiscord(discordClient.Session)

	// Engines
	progressionEngine := progression.NewEngine(store, progression.PlatformAnnouncer{Platform: plat}, eventBus, progression.Options{
		XPPerMessage: cfg.XPPerMessage,
		Cooldown:     cfg.XPCooldown,
	})
	scheduler := moderation.NewScheduler(jobs, plat)
	moderationEngine := moderation.NewEngine(store, plat, scheduler, eventBus, moderation.Options{
		MuteMode: cfg.MuteMode,
	})
	spam := moderation.NewSpamDetector(moderationEngine, plat, cfg.SpamThreshold)

	// Initialize MQTT
	if cfg.MQTTHost != "" {
		mqttClientID := "arcanebot"
		if !cfg.IsProd() {
			mqttClientID = "arcanebot_canary"
		}

		mqttClient := mqtt.Init(cfg.MQTTHost, cfg.MQTTPort, cfg.MQTTUser, cfg.MQTTPassword, mqttClientID)
		defer mqttClient.Destroy()

		eventBus.Subscribe(mqtt.EventSink(mqttClient))
		mqttClient.On(mqtt.LeaderboardTopic, mqtt.LeaderboardHandler(func(ctx context.Context, guildID string, limit int) (interface{}, error) {
			if limit == 0 {
				limit = progression.DefaultLeaderboard
			}
			return progressionEngine.TopN(ctx, guildID, limit)
		}))
	} else {
		logger.Info("MQTT desactivado: MQTT_HOST no configurado", "Main")
	}

	// Initialize web server
	hub := web.NewHub(web.LeaderboardSnapshot(progressionEngine))
	eventBus.Subscribe(hub.Sink())

	webServer := web.Init(web.Options{Port: cfg.Port})
	web.SetupAPIRoutes(webServer, &web.API{
		Store:       store,
		Progression: progressionEngine,
		Bot:         discordClient,
		Hub:         hub,
	})
	webServer.StartAsync()

	commands.RegisterAll(discordClient, commands.Deps{
		Progression: progressionEngine,
		Moderation:  moderationEngine,
		Store:       store,
		Avatars:     render.NewAvatarFetcher(),
	})

	events.RegisterAll(discordClient, &events.Handlers{
		Progression: progressionEngine,
		Spam:        spam,
		Scheduler:   scheduler,
		Prefix:      cfg.Prefix,
	})

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}

	logger.Success("ArcaneBot Go iniciado correctamente!", "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando ArcaneBot Go...", "Main")

	scheduler.Stop()
	if err := discordClient.Stop(); err != nil {
		logger.Warn(fmt.Sprintf("Error cerrando la sesión de Discord: %v", err), "Main")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn(fmt.Sprintf("Error cerrando el servidor web: %v", err), "Main")
	}
	hub.Close()
	eventBus.Wait()
	errors.Get().Stop()
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
