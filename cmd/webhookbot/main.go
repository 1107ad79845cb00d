// Command webhookbot is the push-mode counterpart of echobot: it
// subscribes its public URL, serves updates over HTTP and exposes the
// dispatcher's counters for scraping.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/maxbot/client"
	"github.com/hrygo/maxbot/dispatch"
	"github.com/hrygo/maxbot/fsm"
	"github.com/hrygo/maxbot/internal/profile"
	"github.com/hrygo/maxbot/internal/version"
	"github.com/hrygo/maxbot/types"
)

var rootCmd = &cobra.Command{
	Use:   "webhookbot",
	Short: "Example MAX bot receiving updates over a webhook.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		_ = godotenv.Load()
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		p := &profile.Profile{
			Mode:        viper.GetString("mode"),
			Token:       viper.GetString("token"),
			BaseURL:     viper.GetString("base-url"),
			Storage:     viper.GetString("storage"),
			RedisURL:    viper.GetString("redis-url"),
			Addr:        viper.GetString("addr"),
			Port:        viper.GetInt("port"),
			WebhookPath: viper.GetString("webhook-path"),
			WebhookURL:  viper.GetString("webhook-url"),
		}
		p.FromEnv()
		p.Version = version.GetCurrentVersion(p.Mode)
		if err := p.Validate(); err != nil {
			slog.Error("invalid configuration", "error", err)
			os.Exit(1)
		}
		if p.WebhookURL == "" {
			slog.Error("webhook url is required, set MAXBOT_WEBHOOK_URL or --webhook-url")
			os.Exit(1)
		}

		if err := run(p); err != nil {
			slog.Error("bot stopped", "error", err)
			os.Exit(1)
		}
	},
}

func run(p *profile.Profile) error {
	storage, err := newStorage(p)
	if err != nil {
		return err
	}
	defer storage.Close()

	var clientOpts []client.Option
	if p.BaseURL != "" {
		clientOpts = append(clientOpts, client.WithBaseURL(p.BaseURL))
	}
	bot, err := client.New(p.Token, clientOpts...)
	if err != nil {
		return err
	}
	defer bot.Close()

	d := dispatch.New(storage)
	d.Route(http.MethodGet, "/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	registerHandlers(d, bot)

	ctx, stop := signal.NotifyContext(context.Background(), terminationSignals...)
	defer stop()

	if err := bot.Subscribe(ctx, p.WebhookURL); err != nil {
		return err
	}
	defer func() {
		if err := bot.Unsubscribe(context.Background(), p.WebhookURL); err != nil {
			slog.Warn("unsubscribing webhook failed", "error", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", p.Addr, p.Port)
	fmt.Printf("webhookbot %s listening on %s\n", p.Version, addr)

	return d.RunWebhook(ctx, bot, addr,
		dispatch.WithWebhookPath(p.WebhookPath),
		dispatch.WithMetricsEndpoint("/metrics"))
}

func newStorage(p *profile.Profile) (fsm.Storage, error) {
	if p.Storage == "redis" {
		return fsm.NewRedisStorageFromURL(p.RedisURL)
	}
	return fsm.NewMemoryStorage(), nil
}

func registerHandlers(d *dispatch.Dispatcher, bot *client.Bot) {
	d.OnStart(func(ctx context.Context, ev *dispatch.Event) error {
		chatID, userID := ev.Update.IDs()
		_, err := bot.SendMessage(ctx, chatID, userID, "Hello from the webhook side.")
		return err
	})

	d.OnMessage(func(ctx context.Context, ev *dispatch.Event) error {
		m, _ := ev.Update.(*types.MessageCreated)
		chatID, userID := ev.Update.IDs()
		_, err := bot.SendMessage(ctx, chatID, userID, m.Message.Text())
		return err
	})
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("storage", "memory")
	viper.SetDefault("port", 28080)
	viper.SetDefault("webhook-path", "/")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of the bot, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("token", "", "bot access token")
	rootCmd.PersistentFlags().String("base-url", "", "platform API base URL override")
	rootCmd.PersistentFlags().String("storage", "memory", "FSM storage backend (memory, redis)")
	rootCmd.PersistentFlags().String("redis-url", "", "redis connection URL")
	rootCmd.PersistentFlags().String("addr", "", "address to listen on")
	rootCmd.PersistentFlags().Int("port", 28080, "port to listen on")
	rootCmd.PersistentFlags().String("webhook-path", "/", "route receiving platform pushes")
	rootCmd.PersistentFlags().String("webhook-url", "", "public URL the platform delivers to")

	for _, flag := range []string{"mode", "token", "base-url", "storage", "redis-url", "addr", "port", "webhook-path", "webhook-url"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("maxbot")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
