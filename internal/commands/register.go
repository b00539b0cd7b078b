// Package commands wires every command category into the registry.
// Commands live in subdirectories by category (levels, mod, utils, fun).
package commands

import (
	"github.com/PancyStudios/ArcaneBotGo/internal/commands/fun"
	"github.com/PancyStudios/ArcaneBotGo/internal/commands/levels"
	"github.com/PancyStudios/ArcaneBotGo/internal/commands/mod"
	"github.com/PancyStudios/ArcaneBotGo/internal/commands/utils"
	"github.com/PancyStudios/ArcaneBotGo/internal/moderation"
	"github.com/PancyStudios/ArcaneBotGo/internal/progression"
	"github.com/PancyStudios/ArcaneBotGo/pkg/database"
	"github.com/PancyStudios/ArcaneBotGo/pkg/discord"
	"github.com/PancyStudios/ArcaneBotGo/pkg/render"
)

// Deps are the services the command handlers call into
type Deps struct {
	Progression *progression.Engine
	Moderation  *moderation.Engine
	Store       database.Store
	Avatars     *render.AvatarFetcher
}

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient, deps Deps) {
	levels.RegisterLevelCommands(client, &levels.Handlers{
		Engine:  deps.Progression,
		Avatars: deps.Avatars,
	})

	mod.RegisterModCommands(client, &mod.Handlers{Engine: deps.Moderation})

	utils.RegisterUtilsCommands(client, &utils.Handlers{
		Progression: deps.Progression,
		Moderation:  deps.Moderation,
		Store:       deps.Store,
	})

	fun.RegisterFunCommands(client)
}
