package hedge

import (
	"time"

	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model/enum"
)

// Config bounds the hedge-imbalance state machine.
type Config struct {
	// Boundary is the imbalance band that needs no correction.
	Boundary model.Volume
	// Delay is how long an excursion must persist before a correction fires.
	Delay time.Duration
	// MinBid and MaxAsk are the tick-aligned price extremes used for
	// aggressive corrections.
	MinBid model.Price
	MaxAsk model.Price
}

// Correction is an aggressive offsetting order against the hedge venue.
type Correction struct {
	Side   enum.Side
	Price  model.Price
	Volume model.Volume
}

// Controller tracks unhedged directional exposure. It is Quiet while the
// imbalance sits inside [-Boundary, Boundary] and Armed once an excursion
// starts; an excursion that persists past Delay produces a Correction that
// pins the imbalance back to the boundary.
type Controller struct {
	cfg       Config
	imbalance model.Volume
	armed     bool
	armedAt   time.Time
}

// NewController creates a quiet controller with zero imbalance.
func NewController(cfg Config) *Controller {
	return &Controller{cfg: cfg}
}

// Imbalance returns the current unhedged exposure.
func (c *Controller) Imbalance() model.Volume {
	return c.imbalance
}

// Armed reports whether an excursion timer is running.
func (c *Controller) Armed() bool {
	return c.armed
}

// ApplyFill moves the imbalance by delta (negative for buy fills, positive
// for sell fills) and updates the excursion timer: back inside the band
// clears it, a sign flip restarts it, a fresh excursion starts it, and an
// ongoing excursion leaves it untouched.
func (c *Controller) ApplyFill(delta model.Volume, now time.Time) {
	pre := c.imbalance
	c.imbalance += delta

	switch {
	case c.imbalance >= -c.cfg.Boundary && c.imbalance <= c.cfg.Boundary:
		c.disarm()
	case (pre > 0 && c.imbalance < 0) || (pre < 0 && c.imbalance > 0):
		c.arm(now)
	case !c.armed:
		c.arm(now)
	}
}

// Check fires a correction when the excursion has persisted past Delay:
// an aggressive buy at MaxAsk for positive imbalance, an aggressive sell
// at MinBid for negative. The imbalance is pinned to the boundary, not
// zero, so a residual equal to the boundary always remains.
func (c *Controller) Check(now time.Time) (Correction, bool) {
	if !c.armed || now.Sub(c.armedAt) <= c.cfg.Delay {
		return Correction{}, false
	}
	if c.imbalance <= c.cfg.Boundary && c.imbalance >= -c.cfg.Boundary {
		return Correction{}, false
	}

	var corr Correction
	if c.imbalance > 0 {
		corr = Correction{
			Side:   enum.SideBuy,
			Price:  c.cfg.MaxAsk,
			Volume: c.imbalance - c.cfg.Boundary,
		}
		c.imbalance = c.cfg.Boundary
	} else {
		corr = Correction{
			Side:   enum.SideSell,
			Price:  c.cfg.MinBid,
			Volume: -c.imbalance - c.cfg.Boundary,
		}
		c.imbalance = -c.cfg.Boundary
	}
	c.disarm()
	return corr, true
}

func (c *Controller) arm(now time.Time) {
	c.armed = true
	c.armedAt = now
}

func (c *Controller) disarm() {
	c.armed = false
	c.armedAt = time.Time{}
}
