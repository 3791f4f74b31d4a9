package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/scsp/core/bus"
	"github.com/dmitrymomot/scsp/core/handler"
	"github.com/dmitrymomot/scsp/core/logger"
	"github.com/dmitrymomot/scsp/core/response"
	"github.com/dmitrymomot/scsp/core/router"
	"github.com/dmitrymomot/scsp/middleware"
	"github.com/dmitrymomot/scsp/pkg/wire"
)

func (a *API) index(*router.Context) handler.Response {
	return response.String("scsp")
}

// register subscribes client_id to channel. A WebSocket upgrade request gets
// a push stream, any other request a single long-poll.
func (a *API) register(ctx *router.Context) handler.Response {
	q := ctx.Request().URL.Query()
	clientID := q.Get(wire.ParamClientID)
	if clientID == "" {
		return response.Error(ErrMissingClientID)
	}
	channel := q.Get(wire.ParamChannel)
	if channel == "" {
		return response.Error(ErrMissingChannel)
	}

	if response.IsWebSocketUpgrade(ctx.Request()) {
		return a.stream(ctx, clientID, channel)
	}
	return a.poll(ctx, clientID, channel)
}

func (a *API) stream(ctx *router.Context, clientID, channel string) handler.Response {
	h, err := a.subscribe(clientID, channel, bus.NewStreamingHandler)
	if err != nil {
		return response.Error(err)
	}

	log := a.logger.With(
		logger.Component("api"),
		logger.Channel(channel),
		logger.ClientID(clientID),
	)

	opts := append([]response.WebSocketOption{
		response.WithWSErrorHandler(func(ctx context.Context, err error) {
			log.WarnContext(ctx, "stream ended with error", logger.Error(err))
		}),
	}, a.wsOptions...)
	// Headers written before the upgrade are dropped by the hijack
	if id, ok := middleware.GetRequestID(ctx); ok {
		opts = append(opts, response.WithWSUpgradeHeaders(http.Header{requestIDHeader: {id}}))
	}

	ws := response.WebSocket(func(ctx context.Context, conn *websocket.Conn) error {
		fc := newFrameConn(conn, a.frameWriteTimeout)
		log.InfoContext(ctx, "stream opened")

		err := bus.Stream(ctx, h, fc,
			bus.WithWaitTimeout(a.streamWait),
			bus.WithPing(fc.Ping),
		)

		code := websocket.CloseNormalClosure
		if a.bus.IsShutdown() {
			code = websocket.CloseGoingAway
		}
		fc.Close(code)

		log.InfoContext(ctx, "stream closed")
		return err
	}, opts...)

	// A failed upgrade never reaches the session; release the identity anyway
	return func(w http.ResponseWriter, r *http.Request) error {
		defer h.Close()
		return ws(w, r)
	}
}

func (a *API) poll(ctx *router.Context, clientID, channel string) handler.Response {
	h, err := a.subscribe(clientID, channel, bus.NewPollingHandler)
	if err != nil {
		return response.Error(err)
	}

	res, err := bus.Poll(ctx, h, a.pollTimeout)
	if err != nil {
		// Only a canceled request ends up here
		return response.Error(err)
	}

	return response.JSON(wire.PollResponse{
		HasMsg: res.HasMsg,
		Msg:    wire.Bytes(res.Msg),
	})
}

func (a *API) subscribe(clientID, channel string, factory bus.Factory) (bus.Handler, error) {
	if a.bus.IsShutdown() {
		return nil, ErrShuttingDown
	}
	h, inserted := a.bus.Register(clientID, channel, factory)
	if !inserted {
		if a.bus.IsShutdown() {
			return nil, ErrShuttingDown
		}
		return nil, ErrAlreadyExists
	}
	return h, nil
}

func (a *API) write(ctx *router.Context) handler.Response {
	var req wire.WriteRequest
	if err := json.NewDecoder(ctx.Request().Body).Decode(&req); err != nil {
		var httpErr response.HTTPError
		if errors.As(err, &httpErr) {
			return response.Error(httpErr)
		}
		return response.Error(ErrInvalidBody.WithError(err))
	}
	if err := req.Validate(); err != nil {
		return response.Error(ErrInvalidBody.WithError(err))
	}

	delivered := a.bus.Publish(ctx, req.Channel, req.Msg)
	a.logger.DebugContext(ctx, "message published",
		logger.Component("api"),
		logger.Channel(req.Channel),
		logger.PayloadSize(len(req.Msg)),
		logger.Count("delivered", delivered),
	)
	return response.NoContent()
}

func (a *API) info(*router.Context) handler.Response {
	list := a.bus.List()
	channels := make([]wire.ChannelSummary, 0, len(list))
	for _, c := range list {
		channels = append(channels, wire.ChannelSummary{
			Channel:  c.Channel,
			Handlers: c.Handlers,
		})
	}
	return response.JSON(wire.Info{Channels: channels})
}

// shutdownHandler answers 202 and then runs the shutdown func outside the
// request, since it usually waits for in-flight requests to drain.
func (a *API) shutdownHandler(ctx *router.Context) handler.Response {
	if a.shutdown == nil {
		return response.Error(response.ErrServiceUnavailable.WithMessage("shutdown is not enabled"))
	}

	a.logger.InfoContext(ctx, "shutdown requested",
		logger.Component("api"),
		logger.RemoteAddr(ctx.Request().RemoteAddr),
	)

	resp := response.StringWithStatus("shutting down", http.StatusAccepted)
	return func(w http.ResponseWriter, r *http.Request) error {
		err := resp(w, r)
		go a.shutdown()
		return err
	}
}
