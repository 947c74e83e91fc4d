package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"

	"github.com/bdasgupta02/optiver-ready-trader-go/internal/gateway"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/journal"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/loop"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model/enum"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/obs"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/ops"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/sim"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/trader"
)

const statsInterval = 15 * time.Second

func main() {
	if err := run(); err != nil {
		logs.Errorf("trader: %+v", err)
		os.Exit(1)
	}
}

func run() error {
	configFlag := flag.String("config", "trader.json", "path to JSON config")
	venueFlag := flag.String("venue", "", "venue websocket url (empty runs the built-in simulator)")
	teamFlag := flag.String("team", "", "team name for venue login")
	secretFlag := flag.String("secret", "", "secret for venue login")
	seedFlag := flag.Int64("seed", 0, "simulator random seed")
	flag.Parse()

	loaded, err := ops.Load(*configFlag)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if loaded.Profiling.Enabled {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "ready-trader-go",
			ServerAddress:   loaded.Profiling.ServerAddress,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			return err
		}
		defer func() { _ = profiler.Stop() }()
	}

	var recorder trader.Recorder
	if loaded.Journal.Enabled {
		j, err := journal.Open(loaded.Journal)
		if err != nil {
			return err
		}
		if err := j.Start(ctx); err != nil {
			return err
		}
		defer func() { _ = j.Close() }()
		recorder = j
	}

	lp := loop.New(1024)
	defer lp.Close()
	metrics := obs.NewMetrics()

	gw := &lateGateway{}
	at := trader.New(loaded.Trader, trader.Deps{
		Model:    loaded.NewModel(),
		Gateway:  gw,
		Timers:   lp,
		Metrics:  metrics,
		Recorder: recorder,
	})

	if *venueFlag != "" {
		venue := gateway.NewWS(ctx, *venueFlag, lp)
		if err := venue.Start(ctx); err != nil {
			return err
		}
		defer venue.Close()
		if err := venue.Login(ctx, *teamFlag, *secretFlag); err != nil {
			return err
		}
		unsubscribe := venue.Observe(ctx, at)
		defer unsubscribe()
		gw.inner = venue
		logs.Infof("connected to venue %s", *venueFlag)
	} else {
		exchange := sim.NewExchange(sim.Config{
			TickSize: model.Price(loaded.Venue.TickSize),
			Seed:     *seedFlag,
		}, lp, at)
		gw.inner = exchange
		go exchange.Run(ctx)
		logs.Infof("running against built-in simulator")
	}

	at.Start()

	var logStats func()
	logStats = func() {
		s := metrics.Snapshot()
		logs.Infof("position=%d quotes=%d fills=%d sendDrops=%d cancelDrops=%d evictions=%d hedges=%d",
			at.Position(), s.QuotesSent, s.Fills, s.SendDrops, s.CancelDrops, s.Evictions, s.HedgeCorrections)
		lp.CallLater(statsInterval, logStats)
	}
	lp.CallLater(statsInterval, logStats)

	lp.Run(ctx)
	return nil
}

// lateGateway breaks the construction cycle between the trader and the
// simulated exchange, which need references to each other.
type lateGateway struct {
	inner trader.Gateway
}

func (g *lateGateway) SendInsertOrder(id uint64, side enum.Side, price model.Price, volume model.Volume, lifespan enum.Lifespan) {
	g.inner.SendInsertOrder(id, side, price, volume, lifespan)
}

func (g *lateGateway) SendCancelOrder(id uint64) {
	g.inner.SendCancelOrder(id)
}

func (g *lateGateway) SendHedgeOrder(id uint64, side enum.Side, price model.Price, volume model.Volume) {
	g.inner.SendHedgeOrder(id, side, price, volume)
}
