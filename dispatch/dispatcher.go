package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hrygo/maxbot/fsm"
	"github.com/hrygo/maxbot/types"
)

// Bot is what the dispatcher needs from a platform client. The concrete
// implementation lives in the client package; tests substitute stubs.
type Bot interface {
	types.BotAPI
	GetMe(ctx context.Context) (*types.User, error)
	GetUpdates(ctx context.Context, marker *int64) (*types.UpdateEnvelope, error)
	GetSubscriptions(ctx context.Context) ([]types.Subscription, error)
}

// Dispatcher owns the root router, the included child routers and the
// FSM storage. One Dispatch call processes exactly one update.
type Dispatcher struct {
	*Router

	storage  fsm.Storage
	routers  []*Router
	metrics  *metrics
	gatherer prometheus.Gatherer

	useTasks               bool
	autoRequests           bool
	autoCheckSubscriptions bool

	onStarted func(ctx context.Context, bot Bot) error

	bot         Bot
	me          *types.User
	commands    []string
	extraRoutes []extraRoute

	polling atomic.Bool
	sleep   sleepFunc
	tasks   sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithConcurrentDispatch makes the polling loop hand each update to its
// own goroutine instead of processing them sequentially.
func WithConcurrentDispatch() Option {
	return func(d *Dispatcher) { d.useTasks = true }
}

// WithoutAutoRequests disables the chat/member lookups that normally
// enrich every incoming update. Updates still get the bot back-reference.
func WithoutAutoRequests() Option {
	return func(d *Dispatcher) { d.autoRequests = false }
}

// WithoutSubscriptionCheck skips the warning about active webhook
// subscriptions when polling starts.
func WithoutSubscriptionCheck() Option {
	return func(d *Dispatcher) { d.autoCheckSubscriptions = false }
}

// WithRouterID names the root router in logs and error reports.
func WithRouterID(id string) Option {
	return func(d *Dispatcher) { d.Router.id = id }
}

// WithMetricsRegistry registers the dispatcher's counters with reg
// instead of a private registry.
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(d *Dispatcher) {
		d.metrics = newMetrics(reg)
		d.gatherer = reg
	}
}

// New creates a dispatcher backed by storage. A nil storage falls back
// to in-memory FSM state.
func New(storage fsm.Storage, opts ...Option) *Dispatcher {
	if storage == nil {
		storage = fsm.NewMemoryStorage()
	}
	d := &Dispatcher{
		Router:                 NewRouter("dispatcher"),
		storage:                storage,
		autoRequests:           true,
		autoCheckSubscriptions: true,
		sleep:                  defaultSleep,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.metrics == nil {
		reg := prometheus.NewRegistry()
		d.metrics = newMetrics(reg)
		d.gatherer = reg
	}
	return d
}

// Include attaches child routers. They are consulted in inclusion order
// and always before the dispatcher's own handlers.
func (d *Dispatcher) Include(routers ...*Router) {
	d.routers = append(d.routers, routers...)
}

// OnStarted registers a hook that runs once the bot identity is known,
// before the first update is dispatched.
func (d *Dispatcher) OnStarted(fn func(ctx context.Context, bot Bot) error) {
	d.onStarted = fn
}

// Gatherer exposes the registry holding the dispatcher's counters, for
// mounting a scrape endpoint.
func (d *Dispatcher) Gatherer() prometheus.Gatherer { return d.gatherer }

// Storage returns the FSM storage backing the dispatcher.
func (d *Dispatcher) Storage() fsm.Storage { return d.storage }

// Commands lists every command the command filters across the router
// tree accept, collected when the dispatcher becomes ready.
func (d *Dispatcher) Commands() []string { return d.commands }

// Dispatch routes one decoded update through the router tree. Handler
// and middleware failures are logged with the FSM snapshot for the
// update's routing key; they never propagate to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, u types.Update) {
	d.metrics.received.WithLabelValues(string(u.Type())).Inc()

	chatID, userID := u.IDs()
	key := fsm.StorageKey{ChatID: chatID, UserID: userID}
	fsmCtx := fsm.NewContext(d.storage, key)

	state, err := fsmCtx.GetState(ctx)
	if err != nil {
		slog.Error("dispatch: reading FSM state failed",
			"update_type", string(u.Type()), "chat_id", chatID, "user_id", userID, "error", err)
	}

	ev := &Event{
		Update:  u,
		Context: fsmCtx,
		State:   state,
		Bot:     d.bot,
		Values:  make(map[string]any),
	}
	processInfo := fmt.Sprintf("%s | chat_id: %d, user_id: %d", u.Type(), chatID, userID)

	var handledBy string
	traversal := func(ctx context.Context, ev *Event) error {
		routers := make([]*Router, 0, len(d.routers)+1)
		routers = append(routers, d.routers...)
		routers = append(routers, d.Router)
		for _, r := range routers {
			done, routerID, err := d.runRouter(ctx, r, ev)
			if err != nil {
				return err
			}
			if done {
				handledBy = routerID
				return nil
			}
		}
		return nil
	}

	if err := compose(d.middlewares, traversal)(ctx, ev); err != nil {
		d.metrics.handlerFailures.Inc()
		d.reportFailure(ctx, ev, processInfo, err)
		return
	}
	if handledBy == "" {
		d.metrics.ignored.WithLabelValues(string(u.Type())).Inc()
		slog.Debug("update ignored, no handler matched", "process", processInfo)
		return
	}
	d.metrics.handled.WithLabelValues(string(u.Type())).Inc()
}

// runRouter checks r's filters and, if they pass, runs its middleware
// chain around handler selection. done reports whether a handler ran.
func (d *Dispatcher) runRouter(ctx context.Context, r *Router, ev *Event) (done bool, routerID string, err error) {
	ok, extra, err := evalFilters(ctx, ev, r.filters)
	if err != nil {
		return false, "", &MiddlewareError{RouterID: r.id, Update: string(ev.Update.Type()), Cause: err}
	}
	if !ok {
		return false, "", nil
	}
	applyExtras(ev, extra)

	selection := func(ctx context.Context, ev *Event) error {
		for _, h := range r.handlersFor(ev.Update.Type()) {
			ok, extra, err := evalFilters(ctx, ev, h.filters)
			if err != nil {
				return &MiddlewareError{RouterID: r.id, Update: string(ev.Update.Type()), Cause: err}
			}
			if !ok {
				continue
			}
			if !h.matchesState(ev.State) {
				continue
			}
			applyExtras(ev, extra)

			done = true
			invoke := func(ctx context.Context, ev *Event) error {
				if err := h.fn(ctx, ev); err != nil {
					return &HandlerError{
						RouterID: r.id,
						Handler:  h.name,
						Update:   string(ev.Update.Type()),
						Cause:    err,
					}
				}
				return nil
			}
			return compose(h.middlewares, invoke)(ctx, ev)
		}
		return nil
	}

	if err := compose(r.middlewares, selection)(ctx, ev); err != nil {
		return done, r.id, err
	}
	return done, r.id, nil
}

// reportFailure logs a contained handler or middleware error together
// with the FSM snapshot of the failing routing key.
func (d *Dispatcher) reportFailure(ctx context.Context, ev *Event, processInfo string, err error) {
	snapshot := d.snapshot(ctx, ev)

	var herr *HandlerError
	if errors.As(err, &herr) {
		herr.Snapshot = snapshot
		slog.Error("handler failed",
			"router_id", herr.RouterID,
			"handler", herr.Handler,
			"process", processInfo,
			"fsm_state", snapshot.State,
			"fsm_data", snapshot.Data,
			"error", herr.Cause)
		return
	}
	var merr *MiddlewareError
	if errors.As(err, &merr) {
		merr.Snapshot = snapshot
		slog.Error("middleware failed",
			"router_id", merr.RouterID,
			"process", processInfo,
			"fsm_state", snapshot.State,
			"fsm_data", snapshot.Data,
			"error", merr.Cause)
		return
	}
	slog.Error("dispatch failed",
		"process", processInfo,
		"fsm_state", snapshot.State,
		"fsm_data", snapshot.Data,
		"error", err)
}

func (d *Dispatcher) snapshot(ctx context.Context, ev *Event) StateSnapshot {
	key := ev.Context.Key()
	snap := StateSnapshot{ChatID: key.ChatID, UserID: key.UserID}
	if state, err := ev.Context.GetState(ctx); err == nil {
		snap.State = state
	}
	if data, err := ev.Context.GetData(ctx); err == nil {
		snap.Data = data
	}
	return snap
}

// ready resolves the bot identity, runs the startup hook and collects
// the command registry. Polling and webhook modes both call it before
// serving updates.
func (d *Dispatcher) ready(ctx context.Context, bot Bot, pollingMode bool) error {
	d.bot = bot

	if pollingMode && d.autoCheckSubscriptions {
		if subs, err := bot.GetSubscriptions(ctx); err != nil {
			slog.Warn("subscription check failed", "error", err)
		} else if len(subs) > 0 {
			urls := make([]string, 0, len(subs))
			for _, s := range subs {
				urls = append(urls, s.URL)
			}
			slog.Warn("starting polling while webhook subscriptions are active, updates may be split", "urls", urls)
		}
	}

	me, err := bot.GetMe(ctx)
	if err != nil {
		return errors.Wrap(err, "resolving bot identity")
	}
	d.me = me
	d.commands = d.collectCommands()

	slog.Info("bot ready",
		"user_id", me.UserID,
		"username", stringOrEmpty(me.Username),
		"handlers", d.handlerCount(),
		"commands", d.commands)

	if d.onStarted != nil {
		if err := d.onStarted(ctx, bot); err != nil {
			return errors.Wrap(err, "on-started hook")
		}
	}
	return nil
}

func (d *Dispatcher) handlerCount() int {
	n := len(d.Router.handlers)
	for _, r := range d.routers {
		n += len(r.handlers)
	}
	return n
}

// collectCommands walks every handler's filters for command filters and
// gathers the commands they accept, deduplicated, in registration order.
func (d *Dispatcher) collectCommands() []string {
	seen := make(map[string]struct{})
	var out []string
	walk := func(r *Router) {
		for _, h := range r.handlers {
			for _, f := range h.filters {
				cf, ok := f.(*CommandFilter)
				if !ok {
					continue
				}
				for _, c := range cf.Commands() {
					if _, dup := seen[c]; dup {
						continue
					}
					seen[c] = struct{}{}
					out = append(out, c)
				}
			}
		}
	}
	for _, r := range d.routers {
		walk(r)
	}
	walk(d.Router)
	return out
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
