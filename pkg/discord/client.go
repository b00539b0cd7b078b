// Package discord provides the Discord bot client and related structures.
// It wraps discordgo with the command registry and both invocation forms.
package discord

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/pkg/config"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// discordgo logs through our logger
func init() {
	discordgo.Logger = func(msgL int, caller int, format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			logger.Error(msg, "DiscordGo")
		case discordgo.LogWarning:
			logger.Warn(msg, "DiscordGo")
		default:
			logger.Debug(msg, "DiscordGo")
		}
	}
}

// ExtendedClient wraps discordgo.Session with additional functionality
type ExtendedClient struct {
	Session        *discordgo.Session
	Commands       *CommandCollection
	CommandHandler *CommandHandler
	EventHandler   *EventHandler
	Prefix         string
	StartTime      time.Time
	mu             sync.RWMutex
	isReady        bool
}

// CommandCollection holds registered commands by name, "group.sub" name
// and prefix alias
type CommandCollection struct {
	commands map[string]*Command
	aliases  map[string]string
	mu       sync.RWMutex
}

// NewCommandCollection creates a new CommandCollection
func NewCommandCollection() *CommandCollection {
	return &CommandCollection{
		commands: make(map[string]*Command),
		aliases:  make(map[string]string),
	}
}

// Set adds or updates a command and its aliases
func (cc *CommandCollection) Set(name string, cmd *Command) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.commands[name] = cmd
	for _, alias := range cmd.Aliases {
		cc.aliases[strings.ToLower(alias)] = name
	}
}

// Get retrieves a command by name
func (cc *CommandCollection) Get(name string) (*Command, bool) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	cmd, ok := cc.commands[name]
	return cmd, ok
}

// Resolve finds a command by name or alias and returns its registry name
func (cc *CommandCollection) Resolve(word string) (*Command, string, bool) {
	word = strings.ToLower(word)
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	if cmd, ok := cc.commands[word]; ok {
		return cmd, word, true
	}
	if name, ok := cc.aliases[word]; ok {
		return cc.commands[name], name, true
	}
	return nil, "", false
}

// Size returns the number of commands
func (cc *CommandCollection) Size() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.commands)
}

// All returns all commands
func (cc *CommandCollection) All() map[string]*Command {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	result := make(map[string]*Command)
	for k, v := range cc.commands {
		result[k] = v
	}
	return result
}

var (
	client *ExtendedClient
	once   sync.Once
)

// Init initializes the global Discord client
func Init(token, prefix string) (*ExtendedClient, error) {
	var err error
	once.Do(func() {
		client, err = NewClient(token, prefix)
	})
	return client, err
}

// Get returns the global Discord client
func Get() *ExtendedClient {
	return client
}

// NewClient creates a new ExtendedClient
func NewClient(token, prefix string) (*ExtendedClient, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent

	session.ShardCount = 1
	session.SyncEvents = false
	session.StateEnabled = true
	session.LogLevel = discordgo.LogWarning

	if prefix == "" {
		prefix = "."
	}

	c := &ExtendedClient{
		Session:  session,
		Commands: NewCommandCollection(),
		Prefix:   prefix,
		isReady:  false,
	}

	c.CommandHandler = NewCommandHandler(c)
	c.EventHandler = NewEventHandler(c)

	return c, nil
}

// Start opens the gateway connection. Slash commands are registered on Ready.
func (c *ExtendedClient) Start() error {
	c.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		c.mu.Lock()
		c.isReady = true
		c.mu.Unlock()

		logger.Success("Bot conectado como: "+r.User.Username, "Client")
		c.CommandHandler.RegisterCommands()
	})

	c.Session.AddHandler(c.handleInteraction)
	c.Session.AddHandler(c.handleMessage)

	c.StartTime = time.Now()
	return c.Session.Open()
}

// Stop stops the bot and closes the session
func (c *ExtendedClient) Stop() error {
	c.mu.Lock()
	c.isReady = false
	c.mu.Unlock()

	if c.Session != nil {
		return c.Session.Close()
	}
	return nil
}

// IsReady returns true if the bot is ready
func (c *ExtendedClient) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isReady
}

// GuildCount returns the number of guilds the bot is in
func (c *ExtendedClient) GuildCount() int {
	if c.Session == nil || c.Session.State == nil {
		return 0
	}
	c.Session.State.RLock()
	defer c.Session.State.RUnlock()
	return len(c.Session.State.Guilds)
}

// Latency returns the gateway heartbeat latency
func (c *ExtendedClient) Latency() time.Duration {
	if c.Session == nil {
		return 0
	}
	return c.Session.HeartbeatLatency()
}

// Uptime returns how long the client has been running
func (c *ExtendedClient) Uptime() time.Duration {
	if c.StartTime.IsZero() {
		return 0
	}
	return time.Since(c.StartTime)
}

// GetConfig returns the bot configuration
func (c *ExtendedClient) GetConfig() *config.Config {
	return config.Get()
}
