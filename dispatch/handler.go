package dispatch

import (
	"log/slog"
	"reflect"
	"runtime"
	"strings"
	"sync"

	"github.com/hrygo/maxbot/fsm"
	"github.com/hrygo/maxbot/types"
)

// handlerEntry binds a handler function to the update type it accepts
// plus its own filters, state gate and middleware.
type handlerEntry struct {
	updateType  types.UpdateType
	fn          Handler
	name        string
	filters     []Filter
	states      []fsm.State
	middlewares []Middleware
}

// HandlerOption configures a registered handler.
type HandlerOption func(*handlerEntry)

// WithFilters attaches filters that must all pass before the handler runs.
func WithFilters(filters ...Filter) HandlerOption {
	return func(h *handlerEntry) { h.filters = append(h.filters, filters...) }
}

// WithStates gates the handler on the current FSM state.
func WithStates(states ...fsm.State) HandlerOption {
	return func(h *handlerEntry) { h.states = append(h.states, states...) }
}

// WithMiddlewares wraps only this handler's invocation.
func WithMiddlewares(mws ...Middleware) HandlerOption {
	return func(h *handlerEntry) { h.middlewares = append(h.middlewares, mws...) }
}

// WithName overrides the handler name used in logs and error reports.
func WithName(name string) HandlerOption {
	return func(h *handlerEntry) { h.name = name }
}

func (h *handlerEntry) matchesState(current string) bool {
	if len(h.states) == 0 {
		return true
	}
	for _, s := range h.states {
		if s.Is(current) {
			return true
		}
	}
	return false
}

func handlerName(fn Handler) string {
	pc := reflect.ValueOf(fn).Pointer()
	if f := runtime.FuncForPC(pc); f != nil {
		name := f.Name()
		if i := strings.LastIndexByte(name, '/'); i >= 0 {
			name = name[i+1:]
		}
		return name
	}
	return "handler"
}

var deprecatedWarned sync.Map

// warnDeprecated logs once per deprecated update type a handler is
// registered for.
func warnDeprecated(t types.UpdateType) {
	if !t.Deprecated() {
		return
	}
	if _, loaded := deprecatedWarned.LoadOrStore(t, struct{}{}); !loaded {
		slog.Warn("registering handler for deprecated update type", "update_type", string(t))
	}
}
