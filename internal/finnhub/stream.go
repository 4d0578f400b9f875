package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/coder/websocket"

	"pricetrack/internal/live"
)

// DefaultStreamURL is the production Finnhub websocket endpoint.
const DefaultStreamURL = "wss://ws.finnhub.io"

// defaultRetryDelay is the fixed pause before each reconnect attempt.
const defaultRetryDelay = 5 * time.Second

// StreamConn is the minimal websocket surface the stream consumes. The real
// implementation wraps coder/websocket; tests substitute a fake transport.
type StreamConn interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}

// Dialer opens a StreamConn to the given URL.
type Dialer func(ctx context.Context, url string) (StreamConn, error)

// Stream maintains a subscription to the Finnhub trade feed for a fixed set
// of symbols, writing every received tick into a live.PriceTable. Transport
// failures are retried indefinitely with a fixed delay; callers above the
// stream never observe them.
type Stream struct {
	url        string
	symbols    []string
	prices     *live.PriceTable
	dial       Dialer
	retryDelay time.Duration
	log        *slog.Logger
}

// NewStream creates a Stream for the given symbols. An empty streamURL
// selects the production endpoint. Ticks are delivered into prices.
func NewStream(streamURL, token string, symbols []string, prices *live.PriceTable, log *slog.Logger) *Stream {
	if streamURL == "" {
		streamURL = DefaultStreamURL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Stream{
		url:        streamURL + "?token=" + token,
		symbols:    symbols,
		prices:     prices,
		dial:       wsDial,
		retryDelay: defaultRetryDelay,
		log:        log,
	}
}

// streamState is one step of the reconnect machine:
// connecting → subscribed → disconnected(delay) → connecting → …
type streamState int

const (
	stateConnecting streamState = iota
	stateSubscribed
	stateDisconnected
)

// Run drives the subscription until ctx is cancelled. It only ever returns
// the context's error; transport failures loop back through the
// disconnected state.
func (s *Stream) Run(ctx context.Context) error {
	state := stateConnecting
	var conn StreamConn

	for {
		switch state {
		case stateConnecting:
			c, err := s.dial(ctx, s.url)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Warn("stream dial failed", "error", err)
				state = stateDisconnected
				continue
			}
			if err := s.subscribe(ctx, c); err != nil {
				c.Close()
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Warn("stream subscribe failed", "error", err)
				state = stateDisconnected
				continue
			}
			conn = c
			s.log.Info("stream connected", "symbols", len(s.symbols))
			state = stateSubscribed

		case stateSubscribed:
			data, err := conn.Read(ctx)
			if err != nil {
				conn.Close()
				conn = nil
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Warn("stream read failed, reconnecting", "error", err)
				state = stateDisconnected
				continue
			}
			s.handleMessage(data)

		case stateDisconnected:
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.retryDelay):
			}
			state = stateConnecting
		}
	}
}

// subscribe sends one subscribe frame per symbol on a fresh connection.
func (s *Stream) subscribe(ctx context.Context, conn StreamConn) error {
	for _, sym := range s.symbols {
		msg, err := json.Marshal(map[string]string{"type": "subscribe", "symbol": sym})
		if err != nil {
			return fmt.Errorf("encoding subscribe for %s: %w", sym, err)
		}
		if err := conn.Write(ctx, msg); err != nil {
			return fmt.Errorf("subscribing to %s: %w", sym, err)
		}
	}
	return nil
}

// tradeMessage is the wire shape of a Finnhub trade push.
type tradeMessage struct {
	Type string `json:"type"`
	Data []struct {
		Symbol string  `json:"s"`
		Price  float64 `json:"p"`
	} `json:"data"`
}

// handleMessage records trade ticks into the price table. Non-trade frames
// (pings, acks) and undecodable payloads are dropped.
func (s *Stream) handleMessage(data []byte) {
	var msg tradeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.log.Debug("dropping undecodable stream frame", "error", err)
		return
	}
	if msg.Type != "trade" {
		return
	}
	for _, trade := range msg.Data {
		s.prices.Set(trade.Symbol, trade.Price)
	}
}

// wsConn adapts coder/websocket to StreamConn.
type wsConn struct {
	conn *websocket.Conn
}

func wsDial(ctx context.Context, url string) (StreamConn, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: c}, nil
}

func (w *wsConn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := w.conn.Read(ctx)
	return data, err
}

func (w *wsConn) Write(ctx context.Context, data []byte) error {
	return w.conn.Write(ctx, websocket.MessageText, data)
}

func (w *wsConn) Close() error {
	return w.conn.Close(websocket.StatusNormalClosure, "")
}
