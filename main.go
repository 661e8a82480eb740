package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emotebot/pkg/bot"
	"emotebot/pkg/cache"
	"emotebot/pkg/config"
	"emotebot/pkg/emote"
	"emotebot/pkg/persist"
	"emotebot/pkg/surreal"

	"github.com/bwmarrin/discordgo"
)

func main() {
	// Load config.yml
	cfg, err := config.LoadConfig("config.yml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Secrets come from the environment, seeded from .env when present
	secrets, err := config.LoadSecrets()
	if err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}
	if err := secrets.RequireBackend(cfg.Storage.Backend); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	backend, closeBackend := openBackend(ctx, cfg, secrets)
	defer closeBackend()

	prefixStore, err := emote.NewPrefixStore(ctx, backend, cfg.Storage.PrefixFile)
	if err != nil {
		log.Fatalf("Failed to load prefixes: %v", err)
	}
	emoteStore, err := emote.NewEmoteStore(ctx, backend, cfg.Storage.EmoteFile)
	if err != nil {
		log.Fatalf("Failed to load emotes: %v", err)
	}

	handler := bot.NewHandler(prefixStore, emoteStore, cfg.Commands.Prefix)

	// Create Discord Session
	dg, err := discordgo.New("Bot " + secrets.DiscordToken)
	if err != nil {
		log.Fatalf("Error creating Discord session: %v", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent

	dg.AddHandler(handler.MessageCreate)
	if cfg.SlashCommands.Enabled {
		dg.AddHandler(handler.InteractionCreate)
	}

	if err := dg.Open(); err != nil {
		log.Fatalf("Error opening connection: %v", err)
	}
	defer dg.Close()

	// Set Bot ID in handler (so it can ignore itself)
	handler.SetBotID(dg.State.User.ID)
	handler.UpdateStatus(dg)

	if cfg.SlashCommands.Enabled {
		guildID := secrets.DiscordGuildID // empty = global
		registeredCommands, err := bot.RegisterSlashCommands(dg, guildID)
		if err != nil {
			log.Fatalf("Error registering slash commands: %v", err)
		}
		defer func() {
			if err := bot.UnregisterSlashCommands(dg, guildID, registeredCommands); err != nil {
				log.Printf("Error unregistering slash commands: %v", err)
			}
		}()
	}

	log.Printf("Emote bot is now running with command prefix %q. Press CTRL-C to exit.", cfg.Commands.Prefix)

	// Wait for signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := prefixStore.Flush(flushCtx); err != nil {
		log.Printf("Error flushing prefixes: %v", err)
	}
	if err := emoteStore.Flush(flushCtx); err != nil {
		log.Printf("Error flushing emotes: %v", err)
	}
}

// openBackend picks the snapshot store named in the config. The returned func
// releases any connection it opened.
func openBackend(ctx context.Context, cfg *config.Config, secrets *config.Secrets) (persist.Backend, func()) {
	switch cfg.Storage.Backend {
	case "redis":
		c, err := cache.NewRedisCache(secrets.RedisURL, cfg.Storage.RedisKeyPrefix)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		log.Printf("Storing emote data in Redis under %q", c.Key("snapshot"))
		return persist.NewRedisBackend(c), func() { c.Close() }

	case "surreal":
		host := secrets.SurrealURL()
		log.Printf("Connecting to SurrealDB at %s (NS: %s, DB: %s)", host, secrets.SurrealNS, secrets.SurrealDatabase)
		client, err := surreal.NewClient(host, secrets.SurrealUser, secrets.SurrealPass, secrets.SurrealNS, secrets.SurrealDatabase)
		if err != nil {
			log.Fatalf("Failed to connect to SurrealDB: %v", err)
		}
		b, err := persist.NewSurrealBackend(client, cfg.Storage.SurrealTable)
		if err != nil {
			log.Fatalf("Invalid SurrealDB table: %v", err)
		}
		if err := b.Init(ctx); err != nil {
			// Schema may already exist under different permissions
			log.Printf("Warning: Failed to initialize SurrealDB schema: %v", err)
		}
		return b, client.Close

	default:
		log.Printf("Storing emote data in %s and %s", cfg.Storage.PrefixFile, cfg.Storage.EmoteFile)
		return persist.NewFileBackend(cfg.Storage.Dir), func() {}
	}
}
