// Command echobot is a long-polling example bot: it echoes messages,
// walks a two-step FSM survey and serves an inline keyboard wired to a
// callback payload schema.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/maxbot/client"
	"github.com/hrygo/maxbot/dispatch"
	"github.com/hrygo/maxbot/fsm"
	"github.com/hrygo/maxbot/internal/profile"
	"github.com/hrygo/maxbot/internal/version"
	"github.com/hrygo/maxbot/payload"
	"github.com/hrygo/maxbot/types"
)

var (
	survey = fsm.NewStatesGroup("Survey", "name", "color")

	colorPayload = payload.New("color", []string{"value"})
)

var rootCmd = &cobra.Command{
	Use:   "echobot",
	Short: "Example MAX bot driven by long polling.",
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
			PollLimit:   viper.GetInt("poll-limit"),
			PollTimeout: viper.GetInt("poll-timeout"),
			SkipUpdates: viper.GetBool("skip-updates"),
			Concurrent:  viper.GetBool("concurrent"),
		}
		p.FromEnv()
		p.Version = version.GetCurrentVersion(p.Mode)
		if err := p.Validate(); err != nil {
			slog.Error("invalid configuration", "error", err)
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
	if p.PollLimit > 0 {
		clientOpts = append(clientOpts, client.WithPollLimit(p.PollLimit))
	}
	if p.PollTimeout > 0 {
		clientOpts = append(clientOpts, client.WithPollTimeout(p.PollTimeout))
	}
	bot, err := client.New(p.Token, clientOpts...)
	if err != nil {
		return err
	}
	defer bot.Close()

	var dispatcherOpts []dispatch.Option
	if p.Concurrent {
		dispatcherOpts = append(dispatcherOpts, dispatch.WithConcurrentDispatch())
	}
	d := dispatch.New(storage, dispatcherOpts...)
	registerHandlers(d, bot)

	ctx, stop := signal.NotifyContext(context.Background(), terminationSignals...)
	defer stop()

	fmt.Printf("echobot %s started\n", p.Version)

	var pollOpts []dispatch.PollOption
	if p.SkipUpdates {
		pollOpts = append(pollOpts, dispatch.SkipUpdates())
	}
	return d.StartPolling(ctx, bot, pollOpts...)
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
		_, err := bot.SendMessage(ctx, chatID, userID,
			"Hi! Send /survey to begin, /colors to pick a color, or anything else to hear it back.")
		return err
	})

	d.OnMessage(func(ctx context.Context, ev *dispatch.Event) error {
		chatID, userID := ev.Update.IDs()
		if err := ev.Context.SetState(ctx, survey.State("name")); err != nil {
			return err
		}
		_, err := bot.SendMessage(ctx, chatID, userID, "What is your name?")
		return err
	}, dispatch.WithFilters(dispatch.Command("survey")))

	d.OnMessage(func(ctx context.Context, ev *dispatch.Event) error {
		chatID, userID := ev.Update.IDs()
		m, _ := ev.Update.(*types.MessageCreated)
		if err := ev.Context.UpdateData(ctx, map[string]any{"name": m.Message.Text()}); err != nil {
			return err
		}
		if err := ev.Context.SetState(ctx, survey.State("color")); err != nil {
			return err
		}
		_, err := bot.SendMessage(ctx, chatID, userID, "And your favourite color?")
		return err
	}, dispatch.WithStates(survey.State("name")))

	d.OnMessage(func(ctx context.Context, ev *dispatch.Event) error {
		chatID, userID := ev.Update.IDs()
		m, _ := ev.Update.(*types.MessageCreated)
		data, err := ev.Context.GetData(ctx)
		if err != nil {
			return err
		}
		if err := ev.Context.Clear(ctx); err != nil {
			return err
		}
		_, err = bot.SendMessage(ctx, chatID, userID,
			fmt.Sprintf("Nice to meet you, %v. %s is a fine color.", data["name"], m.Message.Text()))
		return err
	}, dispatch.WithStates(survey.State("color")))

	d.OnMessage(func(ctx context.Context, ev *dispatch.Event) error {
		chatID, userID := ev.Update.IDs()
		keyboard := types.NewInlineKeyboard()
		for _, color := range []string{"red", "green", "blue"} {
			packed, err := colorPayload.Pack(map[string]any{"value": color})
			if err != nil {
				return err
			}
			keyboard.Add(types.CallbackButton(color, packed))
		}
		_, err := bot.SendMessage(ctx, chatID, userID, "Pick a color:",
			client.WithAttachments(keyboard.AsAttachment()))
		return err
	}, dispatch.WithFilters(dispatch.Command("colors")))

	d.OnCallback(func(ctx context.Context, ev *dispatch.Event) error {
		cb := ev.Update.(*types.MessageCallback)
		values := ev.Payload.(map[string]string)
		note := "You picked " + values["value"]
		return bot.AnswerCallback(ctx, cb.Callback.CallbackID, client.CallbackAnswer{
			Notification: &note,
		})
	}, dispatch.WithFilters(colorPayload.Filter()))

	// Echo fallback, consulted last.
	d.OnMessage(func(ctx context.Context, ev *dispatch.Event) error {
		m, _ := ev.Update.(*types.MessageCreated)
		text := strings.TrimSpace(m.Message.Text())
		if text == "" {
			return nil
		}
		chatID, userID := ev.Update.IDs()
		_, err := bot.SendMessage(ctx, chatID, userID, text)
		return err
	})
}

func init() {
	viper.SetDefault("mode", "dev")
	viper.SetDefault("storage", "memory")

	rootCmd.PersistentFlags().String("mode", "dev", `mode of the bot, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("token", "", "bot access token")
	rootCmd.PersistentFlags().String("base-url", "", "platform API base URL override")
	rootCmd.PersistentFlags().String("storage", "memory", "FSM storage backend (memory, redis)")
	rootCmd.PersistentFlags().String("redis-url", "", "redis connection URL")
	rootCmd.PersistentFlags().Int("poll-limit", 0, "max updates per getUpdates call")
	rootCmd.PersistentFlags().Int("poll-timeout", 0, "long poll timeout in seconds")
	rootCmd.PersistentFlags().Bool("skip-updates", false, "drop updates accumulated while the bot was down")
	rootCmd.PersistentFlags().Bool("concurrent", false, "dispatch each update on its own goroutine")

	for _, flag := range []string{"mode", "token", "base-url", "storage", "redis-url", "poll-limit", "poll-timeout", "skip-updates", "concurrent"} {
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
