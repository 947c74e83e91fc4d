package gateway

import (
	"context"
	"strconv"

	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"github.com/yanun0323/pkg/ws"

	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model/enum"
)

const loginID = 1

// Callbacks is the slice of the trading core the gateway feed drives.
type Callbacks interface {
	OnOrderBookUpdate(instrument enum.Instrument, sequence uint64,
		askPrices []model.Price, askVolumes []model.Volume,
		bidPrices []model.Price, bidVolumes []model.Volume)
	OnOrderFilled(id uint64, price model.Price, volume model.Volume)
	OnOrderStatus(id uint64, fillVolume, remainingVolume model.Volume, fees int64)
	OnError(id uint64, message string)
	OnHedgeFilled(id uint64, price model.Price, volume model.Volume)
	OnTradeTicks(instrument enum.Instrument, sequence uint64,
		askPrices []model.Price, askVolumes []model.Volume,
		bidPrices []model.Price, bidVolumes []model.Volume)
}

// Poster serializes callback dispatch onto the event loop.
type Poster interface {
	Post(fn func()) error
}

// WS speaks the venue's websocket protocol: order actions go out as JSON
// frames, executions and book updates come back on the same socket. Prices
// on the feed are decimal currency amounts and are scaled to integer cents.
type WS struct {
	wss    *ws.WebSocket
	poster Poster
}

// NewWS creates a gateway client for the venue url.
func NewWS(ctx context.Context, url string, poster Poster) *WS {
	return &WS{
		wss:    ws.New(ctx, url),
		poster: poster,
	}
}

// Start opens the websocket.
func (g *WS) Start(ctx context.Context) error {
	if err := g.wss.Start(ctx); err != nil {
		return errors.Wrap(err, "start wss")
	}
	return nil
}

// Close tears the socket down.
func (g *WS) Close() {
	g.wss.Close()
}

type loginRequest struct {
	ID     int64    `json:"id"`
	Method string   `json:"method"`
	Params []string `json:"params"`
}

type loginResponse struct {
	ID     int64  `json:"id"`
	Result string `json:"result"`
	Error  any    `json:"error"`
}

// Login authenticates the trading session and waits for the venue ack.
func (g *WS) Login(ctx context.Context, team, secret string) error {
	if err := g.wss.SendAndWait(ctx, ws.Sidecar{
		Sender: func(ctx context.Context, client *ws.WebSocket) error {
			payload := loginRequest{
				ID:     loginID,
				Method: "session.login",
				Params: []string{team, secret},
			}
			if err := client.WriteJSON(payload); err != nil {
				return errors.Wrap(err, "write login payload").With("team", team)
			}
			return nil
		},
		Waiter: func(ctx context.Context, m ws.Message) (bool, error) {
			resp, ok := ws.ReadMessage[loginResponse](m)
			if !ok || resp.ID != loginID {
				return false, nil
			}
			if resp.Error != nil {
				return false, errors.Errorf("login rejected, err: %+v", resp.Error)
			}
			return true, nil
		},
	}, false); err != nil {
		return errors.Wrap(err, "send and wait")
	}
	return nil
}

// SendInsertOrder places a resting order. Fire-and-forget: a write failure
// is logged and surfaces later as a venue error or a silent miss.
func (g *WS) SendInsertOrder(id uint64, side enum.Side, price model.Price, volume model.Volume, lifespan enum.Lifespan) {
	g.write("order.insert", map[string]any{
		"clientOrderId": id,
		"side":          side.String(),
		"price":         int64(price),
		"volume":        int64(volume),
		"lifespan":      int(lifespan),
	})
}

// SendCancelOrder cancels a resting order by id.
func (g *WS) SendCancelOrder(id uint64) {
	g.write("order.cancel", map[string]any{"clientOrderId": id})
}

// SendHedgeOrder places an aggressive order against the hedge venue.
func (g *WS) SendHedgeOrder(id uint64, side enum.Side, price model.Price, volume model.Volume) {
	g.write("hedge.insert", map[string]any{
		"clientOrderId": id,
		"side":          side.String(),
		"price":         int64(price),
		"volume":        int64(volume),
	})
}

func (g *WS) write(method string, params map[string]any) {
	if err := g.wss.WriteJSON(map[string]any{
		"method": method,
		"params": params,
	}); err != nil {
		logs.Errorf("write %s, err: %+v", method, err)
	}
}

type envelope struct {
	Method   string          `json:"method"`
	Sequence uint64          `json:"sequence"`
	Book     *bookPayload    `json:"book"`
	Order    *orderPayload   `json:"order"`
	Message  string          `json:"message"`
}

type bookPayload struct {
	Instrument string                `json:"instrument"`
	Asks       [][2]decimal.Decimal  `json:"asks"` // [0]price [1]volume
	Bids       [][2]decimal.Decimal  `json:"bids"`
}

type orderPayload struct {
	ClientOrderID   uint64          `json:"clientOrderId"`
	Price           decimal.Decimal `json:"price"`
	Volume          int64           `json:"volume"`
	FillVolume      int64           `json:"fillVolume"`
	RemainingVolume int64           `json:"remainingVolume"`
	Fees            int64           `json:"fees"`
}

// Observe dispatches feed events onto the loop until ctx is done.
func (g *WS) Observe(ctx context.Context, cb Callbacks) (unsubscribe func()) {
	ch, cancel := g.wss.Subscribe()

	go func() {
		defer cancel()
		for {
			select {
			case <-sys.Shutdown():
				return
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				env, ok := ws.ReadMessage[envelope](m)
				if !ok {
					continue
				}
				g.dispatch(env, cb)
			}
		}
	}()

	return cancel
}

func (g *WS) dispatch(env envelope, cb Callbacks) {
	var fn func()
	switch env.Method {
	case "book.update", "trade.ticks":
		if env.Book == nil {
			return
		}
		instrument, ok := parseInstrument(env.Book.Instrument)
		if !ok {
			return
		}
		askPrices, askVolumes := parseLevels(env.Book.Asks)
		bidPrices, bidVolumes := parseLevels(env.Book.Bids)
		method := env.Method
		seq := env.Sequence
		fn = func() {
			if method == "book.update" {
				cb.OnOrderBookUpdate(instrument, seq, askPrices, askVolumes, bidPrices, bidVolumes)
			} else {
				cb.OnTradeTicks(instrument, seq, askPrices, askVolumes, bidPrices, bidVolumes)
			}
		}
	case "order.filled":
		if env.Order == nil {
			return
		}
		o := env.Order
		price := parsePrice(o.Price)
		fn = func() { cb.OnOrderFilled(o.ClientOrderID, price, model.Volume(o.FillVolume)) }
	case "order.status":
		if env.Order == nil {
			return
		}
		o := env.Order
		fn = func() {
			cb.OnOrderStatus(o.ClientOrderID, model.Volume(o.FillVolume), model.Volume(o.RemainingVolume), o.Fees)
		}
	case "order.error":
		if env.Order == nil {
			return
		}
		o := env.Order
		msg := env.Message
		fn = func() { cb.OnError(o.ClientOrderID, msg) }
	case "hedge.filled":
		if env.Order == nil {
			return
		}
		o := env.Order
		price := parsePrice(o.Price)
		fn = func() { cb.OnHedgeFilled(o.ClientOrderID, price, model.Volume(o.FillVolume)) }
	default:
		return
	}
	if err := g.poster.Post(fn); err != nil {
		logs.Errorf("dispatch %s, err: %+v", env.Method, err)
	}
}

// parsePrice scales a decimal currency amount to integer cents.
func parsePrice(d decimal.Decimal) model.Price {
	f, err := strconv.ParseFloat(d.String(), 64)
	if err != nil {
		return 0
	}
	return model.Price(f*100 + 0.5)
}

func parseLevels(levels [][2]decimal.Decimal) ([]model.Price, []model.Volume) {
	prices := make([]model.Price, 0, len(levels))
	volumes := make([]model.Volume, 0, len(levels))
	for _, level := range levels {
		prices = append(prices, parsePrice(level[0]))
		v, err := strconv.ParseFloat(level[1].String(), 64)
		if err != nil {
			v = 0
		}
		volumes = append(volumes, model.Volume(v))
	}
	return prices, volumes
}

func parseInstrument(name string) (enum.Instrument, bool) {
	switch name {
	case "future":
		return enum.InstrumentFuture, true
	case "etf":
		return enum.InstrumentETF, true
	default:
		return 0, false
	}
}
