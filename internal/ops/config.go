package ops

import (
	"encoding/json"
	"os"
	"time"

	"github.com/yanun0323/errors"

	"github.com/bdasgupta02/optiver-ready-trader-go/internal/journal"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/strategy"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/trader"
)

// Strategy variants selectable from configuration.
const (
	VariantVolatility = "volatility"
	VariantRegression = "regression"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Venue     VenueConfig     `json:"venue"`
	Strategy  StrategyConfig  `json:"strategy"`
	Hedge     HedgeConfig     `json:"hedge"`
	Journal   JournalConfig   `json:"journal"`
	Profiling ProfilingConfig `json:"profiling"`
}

// VenueConfig carries the constants fixed by the venue.
type VenueConfig struct {
	LotSize       int64   `json:"lotSize"`
	PositionLimit int64   `json:"positionLimit"`
	TickSize      int64   `json:"tickSize"`
	MinimumBid    int64   `json:"minimumBid"`
	MaximumAsk    int64   `json:"maximumAsk"`
	MakerFee      float64 `json:"makerFee"`
	TakerFee      float64 `json:"takerFee"`
}

// StrategyConfig selects and tunes the quote model.
type StrategyConfig struct {
	Variant string `json:"variant"`

	// volatility variant
	Window             int     `json:"window"`
	SkewThreshold      int64   `json:"skewThreshold"`
	MaxPositionFactor  float64 `json:"maxPositionFactor"`
	Sensitivity        float64 `json:"sensitivity"`
	RebalanceThreshold int64   `json:"rebalanceThreshold"`
	OrderExpirySeconds int     `json:"orderExpirySeconds"`

	// regression variant
	Lookback           int     `json:"lookback"`
	NormalSpread       float64 `json:"normalSpread"`
	ConservativeSpread float64 `json:"conservativeSpread"`
}

// HedgeConfig tunes the imbalance state machine.
type HedgeConfig struct {
	Boundary          int64 `json:"boundary"`
	DelaySeconds      int   `json:"delaySeconds"`
	CheckStartSeconds int   `json:"checkStartSeconds"`
	CheckEverySeconds int   `json:"checkEverySeconds"`
}

// JournalConfig enables the optional Postgres execution journal.
type JournalConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// ProfilingConfig enables the optional pyroscope profiler.
type ProfilingConfig struct {
	Enabled       bool   `json:"enabled"`
	ServerAddress string `json:"serverAddress"`
}

// Loaded is the resolved configuration ready for wiring.
type Loaded struct {
	Trader    trader.Config
	Strategy  StrategyConfig
	Venue     VenueConfig
	Journal   journal.Config
	Profiling ProfilingConfig
}

// Load reads and validates a JSON config file.
func Load(path string) (Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config")
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "parse config")
	}
	return Resolve(cfg)
}

// Resolve validates a FileConfig and produces the wired form.
func Resolve(cfg FileConfig) (Loaded, error) {
	if err := validateVenue(cfg.Venue); err != nil {
		return Loaded{}, err
	}
	switch cfg.Strategy.Variant {
	case VariantVolatility, VariantRegression:
	case "":
		return Loaded{}, errors.New("strategy variant is empty")
	default:
		return Loaded{}, errors.Errorf("unknown strategy variant: %s", cfg.Strategy.Variant)
	}
	if cfg.Journal.Enabled && cfg.Journal.Database == "" {
		return Loaded{}, errors.New("journal enabled without a database")
	}

	traderCfg := trader.Config{
		LotSize:         model.Volume(cfg.Venue.LotSize),
		PositionLimit:   model.Volume(cfg.Venue.PositionLimit),
		TickSize:        model.Price(cfg.Venue.TickSize),
		MinimumBid:      model.Price(cfg.Venue.MinimumBid),
		MaximumAsk:      model.Price(cfg.Venue.MaximumAsk),
		HedgeBoundary:   model.Volume(cfg.Hedge.Boundary),
		HedgeDelay:      time.Duration(cfg.Hedge.DelaySeconds) * time.Second,
		HedgeCheckStart: time.Duration(cfg.Hedge.CheckStartSeconds) * time.Second,
		HedgeCheckEvery: time.Duration(cfg.Hedge.CheckEverySeconds) * time.Second,
	}
	if cfg.Strategy.Variant == VariantVolatility {
		traderCfg.OrderExpiry = time.Duration(cfg.Strategy.OrderExpirySeconds) * time.Second
		if cfg.Strategy.OrderExpirySeconds == 0 {
			traderCfg.OrderExpiry = 10 * time.Second
		}
	}

	return Loaded{
		Trader:   traderCfg,
		Strategy: cfg.Strategy,
		Venue:    cfg.Venue,
		Journal: journal.Config{
			Enabled:  cfg.Journal.Enabled,
			Host:     cfg.Journal.Host,
			Port:     cfg.Journal.Port,
			User:     cfg.Journal.User,
			Password: cfg.Journal.Password,
			Database: cfg.Journal.Database,
		},
		Profiling: cfg.Profiling,
	}, nil
}

// NewModel builds the configured quote model.
func (l Loaded) NewModel() strategy.Model {
	if l.Strategy.Variant == VariantRegression {
		return strategy.NewRegression(strategy.RegressionConfig{
			TickSize:           model.Price(l.Venue.TickSize),
			Lookback:           l.Strategy.Lookback,
			NormalSpread:       l.Strategy.NormalSpread,
			ConservativeSpread: l.Strategy.ConservativeSpread,
		})
	}
	return strategy.NewVolatility(strategy.VolatilityConfig{
		TickSize:           model.Price(l.Venue.TickSize),
		PositionLimit:      model.Volume(l.Venue.PositionLimit),
		MakerFee:           l.Venue.MakerFee,
		TakerFee:           l.Venue.TakerFee,
		Window:             l.Strategy.Window,
		SkewThreshold:      model.Volume(l.Strategy.SkewThreshold),
		MaxPositionFactor:  l.Strategy.MaxPositionFactor,
		Sensitivity:        l.Strategy.Sensitivity,
		RebalanceThreshold: model.Volume(l.Strategy.RebalanceThreshold),
	})
}

func validateVenue(v VenueConfig) error {
	if v.LotSize <= 0 {
		return errors.New("venue lotSize must be > 0")
	}
	if v.PositionLimit <= 0 {
		return errors.New("venue positionLimit must be > 0")
	}
	if v.TickSize <= 0 {
		return errors.New("venue tickSize must be > 0")
	}
	if v.MaximumAsk <= v.MinimumBid {
		return errors.New("venue maximumAsk must exceed minimumBid")
	}
	if v.MakerFee < 0 || v.TakerFee < 0 {
		return errors.New("venue fees must be >= 0")
	}
	return nil
}
