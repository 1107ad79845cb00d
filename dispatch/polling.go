package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/maxbot/client"
	"github.com/hrygo/maxbot/types"
)

type sleepFunc func(time.Duration)

func defaultSleep(d time.Duration) { time.Sleep(d) }

const (
	transportRetryDelay = 30 * time.Second
	platformRetryDelay  = 5 * time.Second
)

// PollOption configures a polling run.
type PollOption func(*pollConfig)

type pollConfig struct {
	skipUpdates bool
}

// SkipUpdates drops updates that accumulated while the bot was down:
// anything older than the loop start seen on the first iteration is
// discarded without dispatching.
func SkipUpdates() PollOption {
	return func(c *pollConfig) { c.skipUpdates = true }
}

// StartPolling runs the long-poll loop until the context is cancelled,
// StopPolling is called, or the token turns out to be invalid. Every
// other failure mode is retried per a fixed schedule: long-poll
// timeouts immediately, transport failures after 30s, platform errors
// and anything unexpected after 5s. The marker only ever advances, so
// a retried call re-requests the batch that failed rather than
// skipping it.
func (d *Dispatcher) StartPolling(ctx context.Context, bot Bot, opts ...PollOption) error {
	var cfg pollConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	d.polling.Store(true)
	defer d.polling.Store(false)

	if err := d.ready(ctx, bot, true); err != nil {
		return errors.Wrap(err, "starting polling")
	}

	startedAt := types.ToMillis(time.Now())
	firstBatch := true
	var marker *int64

	for d.polling.Load() && ctx.Err() == nil {
		envelope, err := bot.GetUpdates(ctx, marker)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if fatal := d.handlePollError(err); fatal != nil {
				return fatal
			}
			continue
		}
		if envelope.Marker != nil {
			marker = envelope.Marker
		}
		for _, raw := range envelope.Updates {
			u, err := types.DecodeUpdate(raw)
			if err != nil {
				if errors.Is(err, types.ErrUnknownUpdate) {
					d.metrics.unknownUpdates.Inc()
					slog.Warn("skipping unknown update type", "error", err)
				} else {
					slog.Warn("skipping undecodable update", "error", err)
				}
				continue
			}
			if cfg.skipUpdates && firstBatch && u.Time() < startedAt {
				slog.Debug("skipping backlog update", "update_type", string(u.Type()), "timestamp", u.Time())
				continue
			}
			d.serve(ctx, u)
		}
		firstBatch = false
	}

	d.tasks.Wait()
	slog.Info("polling stopped")
	return nil
}

// StopPolling asks a running polling loop to exit after its current
// long-poll call returns.
func (d *Dispatcher) StopPolling() {
	d.polling.Store(false)
}

// serve enriches one update and dispatches it, concurrently when the
// dispatcher runs in concurrent mode.
func (d *Dispatcher) serve(ctx context.Context, u types.Update) {
	if d.autoRequests {
		types.Enrich(ctx, d.bot, u)
	} else {
		types.AttachBot(d.bot, u)
	}
	if d.useTasks {
		d.tasks.Add(1)
		go func() {
			defer d.tasks.Done()
			d.Dispatch(ctx, u)
		}()
		return
	}
	d.Dispatch(ctx, u)
}

// handlePollError applies the retry schedule to a GetUpdates failure.
// A non-nil return means polling must stop.
func (d *Dispatcher) handlePollError(err error) error {
	if client.IsTimeout(err) {
		// The long poll simply expired with nothing new.
		return nil
	}
	if errors.Is(err, client.ErrInvalidToken) {
		slog.Error("access token rejected, stopping polling", "error", err)
		return err
	}
	var terr *client.TransportError
	if errors.As(err, &terr) {
		slog.Warn("transport failure while polling, backing off", "delay", transportRetryDelay, "error", err)
		d.sleep(transportRetryDelay)
		return nil
	}
	var aerr *client.APIError
	if errors.As(err, &aerr) {
		slog.Warn("platform error while polling, backing off", "delay", platformRetryDelay, "code", aerr.Code, "error", err)
		d.sleep(platformRetryDelay)
		return nil
	}
	slog.Error("unexpected polling failure, backing off", "delay", platformRetryDelay, "error", err)
	d.sleep(platformRetryDelay)
	return nil
}
