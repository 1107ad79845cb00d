package dispatch

import (
	"github.com/hrygo/maxbot/types"
)

// Router groups handlers behind shared filters and middleware. Handlers
// are consulted in registration order and the first one whose type,
// filters and state gate all match wins.
type Router struct {
	id          string
	handlers    []*handlerEntry
	filters     []Filter
	middlewares []Middleware
}

// NewRouter creates an empty router. The id shows up in logs and in
// error reports when one of its handlers fails.
func NewRouter(id string) *Router {
	return &Router{id: id}
}

// ID returns the router's identifier.
func (r *Router) ID() string { return r.id }

// On registers fn for updates of type t.
func (r *Router) On(t types.UpdateType, fn Handler, opts ...HandlerOption) *Router {
	warnDeprecated(t)
	h := &handlerEntry{updateType: t, fn: fn, name: handlerName(fn)}
	for _, opt := range opts {
		opt(h)
	}
	r.handlers = append(r.handlers, h)
	return r
}

// OnMessage registers fn for new messages. Most bots live here.
func (r *Router) OnMessage(fn Handler, opts ...HandlerOption) *Router {
	return r.On(types.UpdateMessageCreated, fn, opts...)
}

// OnCallback registers fn for inline-keyboard callbacks.
func (r *Router) OnCallback(fn Handler, opts ...HandlerOption) *Router {
	return r.On(types.UpdateMessageCallback, fn, opts...)
}

// OnStart registers fn for bot_started updates.
func (r *Router) OnStart(fn Handler, opts ...HandlerOption) *Router {
	return r.On(types.UpdateBotStarted, fn, opts...)
}

// Filter adds router-wide filters. An update that fails them skips this
// router entirely and traversal moves on to the next one.
func (r *Router) Filter(filters ...Filter) *Router {
	r.filters = append(r.filters, filters...)
	return r
}

// Use appends middleware wrapping this router's handler selection.
func (r *Router) Use(mws ...Middleware) *Router {
	r.middlewares = append(r.middlewares, mws...)
	return r
}

// UseOuter prepends middleware so it runs before anything added with Use.
func (r *Router) UseOuter(mws ...Middleware) *Router {
	r.middlewares = append(mws, r.middlewares...)
	return r
}

// handlersFor returns the router's handlers registered for t, in order.
func (r *Router) handlersFor(t types.UpdateType) []*handlerEntry {
	var out []*handlerEntry
	for _, h := range r.handlers {
		if h.updateType == t {
			out = append(out, h)
		}
	}
	return out
}
