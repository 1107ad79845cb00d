package dispatch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hrygo/maxbot/types"
)

const defaultWebhookPath = "/"

// WebhookOption configures a webhook run.
type WebhookOption func(*webhookConfig)

type webhookConfig struct {
	path        string
	metricsPath string
}

// WithWebhookPath mounts the update receiver somewhere other than "/".
func WithWebhookPath(path string) WebhookOption {
	return func(c *webhookConfig) { c.path = path }
}

// WithMetricsEndpoint mounts the dispatcher's prometheus counters at
// path on the same server.
func WithMetricsEndpoint(path string) WebhookOption {
	return func(c *webhookConfig) { c.metricsPath = path }
}

type extraRoute struct {
	method  string
	path    string
	handler echo.HandlerFunc
}

// Route mounts an extra handler on the webhook server, next to the
// update receiver. Calls made after RunWebhook have no effect.
func (d *Dispatcher) Route(method, path string, h echo.HandlerFunc) {
	d.extraRoutes = append(d.extraRoutes, extraRoute{method: method, path: path, handler: h})
}

// WebhookPost mounts an extra POST route on the webhook server.
func (d *Dispatcher) WebhookPost(path string, h echo.HandlerFunc) {
	d.Route(http.MethodPost, path, h)
}

// WebhookHandler returns the echo handler receiving platform pushes.
// It always answers 200 {"ok":true}: the platform retries non-2xx
// deliveries, and an update the bot cannot decode will not decode
// better the second time. The handler can be mounted on any echo app;
// bot is bound here so enrichment works without RunWebhook.
func (d *Dispatcher) WebhookHandler(bot Bot) echo.HandlerFunc {
	d.bot = bot
	ack := map[string]bool{"ok": true}
	return func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			slog.Warn("webhook: reading request body failed", "error", err)
			return c.JSON(http.StatusOK, ack)
		}
		u, err := types.DecodeUpdate(body)
		if err != nil {
			if errors.Is(err, types.ErrUnknownUpdate) {
				d.metrics.unknownUpdates.Inc()
				slog.Warn("webhook: skipping unknown update type", "error", err)
			} else {
				slog.Warn("webhook: skipping undecodable update", "error", err)
			}
			return c.JSON(http.StatusOK, ack)
		}
		if d.useTasks {
			d.tasks.Add(1)
			go func() {
				defer d.tasks.Done()
				ctx := context.WithoutCancel(c.Request().Context())
				d.serveWebhook(ctx, u)
			}()
		} else {
			d.serveWebhook(c.Request().Context(), u)
		}
		return c.JSON(http.StatusOK, ack)
	}
}

func (d *Dispatcher) serveWebhook(ctx context.Context, u types.Update) {
	if d.autoRequests {
		types.Enrich(ctx, d.bot, u)
	} else {
		types.AttachBot(d.bot, u)
	}
	d.Dispatch(ctx, u)
}

// RunWebhook serves updates over HTTP until the context is cancelled.
// The bot must already be subscribed to the public URL fronting addr.
func (d *Dispatcher) RunWebhook(ctx context.Context, bot Bot, addr string, opts ...WebhookOption) error {
	cfg := webhookConfig{path: defaultWebhookPath}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := d.ready(ctx, bot, false); err != nil {
		return errors.Wrap(err, "starting webhook")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.POST(cfg.path, d.WebhookHandler(bot))
	if cfg.metricsPath != "" {
		e.GET(cfg.metricsPath, echo.WrapHandler(promhttp.HandlerFor(d.gatherer, promhttp.HandlerOpts{})))
	}
	for _, r := range d.extraRoutes {
		e.Add(r.method, r.path, r.handler)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(addr)
	}()
	slog.Info("webhook server listening", "addr", addr, "path", cfg.path)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			slog.Warn("webhook shutdown", "error", err)
		}
		d.tasks.Wait()
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "webhook server")
	}
}
