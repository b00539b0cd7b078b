// Package main provides a utility to sync Discord slash commands.
// It talks to the REST API only; the gateway is never opened.
//
// Usage:
//
//	sync-commands [sync] [--guild <id>]   overwrite the registered commands with the current set
//	sync-commands list [--guild <id>]     list the registered commands
//	sync-commands clean [--guild <id>]    remove every registered command
package main

import (
	"fmt"
	"os"

	"github.com/PancyStudios/ArcaneBotGo/internal/commands"
	"github.com/PancyStudios/ArcaneBotGo/pkg/config"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/spf13/cobra"
)

const prefix = "SyncCommands"

var guildID string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error(err.Error(), prefix)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "sync-commands",
		Short:         "Manage the bot's registered slash commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSync,
	}
	root.PersistentFlags().StringVarP(&guildID, "guild", "g", "", "target a guild instead of the global scope")

	root.AddCommand(
		&cobra.Command{
			Use:   "sync",
			Short: "Overwrite the registered commands with the current set",
			RunE:  runSync,
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the registered commands",
			RunE:  runList,
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Remove every registered command",
			RunE:  runClean,
		},
	)
	return root
}

// connect builds a REST-only client with every command registered
func connect() (*discord.ExtendedClient, string, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, "", fmt.Errorf("error cargando la configuración: %w", err)
	}

	logger.Init(logger.Options{
		ErrorWebhookURL: cfg.ErrorWebhook,
		LogsWebhookURL:  cfg.LogsWebhook,
		Debug:           cfg.Debug,
	})
	logger.System("Iniciando utilidad de sincronización de comandos...", prefix)

	client, err := discord.NewClient(cfg.BotToken, cfg.Prefix)
	if err != nil {
		return nil, "", fmt.Errorf("error creando el cliente de Discord: %w", err)
	}

	app, err := client.Session.User("@me")
	if err != nil {
		return nil, "", fmt.Errorf("error obteniendo el usuario del bot: %w", err)
	}

	// Handlers never run here, only the definitions are needed
	commands.RegisterAll(client, commands.Deps{})
	return client, app.ID, nil
}

func scope() string {
	if guildID == "" {
		return "globales"
	}
	return "del servidor " + guildID
}

func runSync(cmd *cobra.Command, args []string) error {
	client, appID, err := connect()
	if err != nil {
		return err
	}
	defer logger.Get().Close()

	logger.Info("🔄 Sincronizando comandos "+scope()+"...", prefix)
	synced, err := client.CommandHandler.SyncCommands(appID, guildID)
	if err != nil {
		return fmt.Errorf("error sincronizando comandos: %w", err)
	}
	logger.Success(fmt.Sprintf("✅ %d comandos sincronizados correctamente", len(synced)), prefix)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	client, appID, err := connect()
	if err != nil {
		return err
	}
	defer logger.Get().Close()

	logger.Info("📋 Listando comandos "+scope()+"...", prefix)
	cmds, err := client.Session.ApplicationCommands(appID, guildID)
	if err != nil {
		return fmt.Errorf("error obteniendo comandos: %w", err)
	}

	if len(cmds) == 0 {
		logger.Info("No hay comandos registrados", prefix)
		return nil
	}

	logger.Info(fmt.Sprintf("Comandos encontrados: %d", len(cmds)), prefix)
	for i, c := range cmds {
		fmt.Fprintf(cmd.OutOrStdout(), "%2d. /%s - %s (ID: %s)\n", i+1, c.Name, c.Description, c.ID)
	}
	return nil
}

func runClean(cmd *cobra.Command, args []string) error {
	client, appID, err := connect()
	if err != nil {
		return err
	}
	defer logger.Get().Close()

	logger.Info("🧹 Eliminando comandos "+scope()+"...", prefix)
	removed, err := client.CommandHandler.UnregisterCommands(appID, guildID)
	if err != nil {
		return fmt.Errorf("error eliminando comandos: %w", err)
	}
	logger.Success(fmt.Sprintf("✅ %d comandos eliminados", removed), prefix)
	return nil
}
