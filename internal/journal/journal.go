package journal

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model"
	"github.com/bdasgupta02/optiver-ready-trader-go/internal/model/enum"
)

const (
	defaultHost    = "localhost"
	defaultPort    = 5432
	defaultSSLMode = "disable"
	queueSize      = 1024
)

// Config describes the Postgres connection for the execution journal.
type Config struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Execution is one journaled gateway action.
type Execution struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   uint64 `gorm:"index"`
	Kind      string `gorm:"size:8;index"`
	Side      string `gorm:"size:8"`
	Price     int64
	Volume    int64
	CreatedAt time.Time
}

// Journal records gateway actions to Postgres off the trading path.
// Records are queued non-blocking and written by a background goroutine;
// a full queue drops the record rather than stalling the event loop.
// Nothing is ever read back: the core stays stateless across restarts.
type Journal struct {
	db *gorm.DB
	ch chan Execution
	wg sync.WaitGroup

	started uint32
	closed  uint32
}

// Open connects to Postgres and prepares the executions table.
func Open(cfg Config) (*Journal, error) {
	db, err := gorm.Open(postgres.Open(cfg.dsn()), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.AutoMigrate(&Execution{}); err != nil {
		return nil, errors.Wrap(err, "migrate executions")
	}
	return &Journal{
		db: db,
		ch: make(chan Execution, queueSize),
	}, nil
}

// Start runs the writer loop in a new goroutine.
func (j *Journal) Start(ctx context.Context) error {
	if j == nil {
		return nil
	}
	if !atomic.CompareAndSwapUint32(&j.started, 0, 1) {
		return errors.New("journal already started")
	}
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case exec, ok := <-j.ch:
				if !ok {
					return
				}
				if err := j.db.Create(&exec).Error; err != nil {
					logs.Errorf("journal write failed, err: %+v", err)
				}
			}
		}
	}()
	return nil
}

// Close stops the writer and releases the connection pool.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	if atomic.CompareAndSwapUint32(&j.closed, 0, 1) {
		close(j.ch)
	}
	j.wg.Wait()
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RecordSend journals an order insert.
func (j *Journal) RecordSend(id uint64, side enum.Side, price model.Price, volume model.Volume) {
	j.record("send", id, side, price, volume)
}

// RecordFill journals a fill.
func (j *Journal) RecordFill(id uint64, side enum.Side, price model.Price, volume model.Volume) {
	j.record("fill", id, side, price, volume)
}

// RecordHedge journals a hedge correction.
func (j *Journal) RecordHedge(id uint64, side enum.Side, price model.Price, volume model.Volume) {
	j.record("hedge", id, side, price, volume)
}

func (j *Journal) record(kind string, id uint64, side enum.Side, price model.Price, volume model.Volume) {
	if j == nil || atomic.LoadUint32(&j.closed) != 0 {
		return
	}
	exec := Execution{
		OrderID:   id,
		Kind:      kind,
		Side:      side.String(),
		Price:     int64(price),
		Volume:    int64(volume),
		CreatedAt: time.Now().UTC(),
	}
	select {
	case j.ch <- exec:
	default:
		// journaling never backpressures trading
	}
}

func (cfg Config) dsn() string {
	host := cfg.Host
	if host == "" {
		host = defaultHost
	}
	port := cfg.Port
	if port == 0 {
		port = defaultPort
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = defaultSSLMode
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
	}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}
	if cfg.Database != "" {
		u.Path = "/" + cfg.Database
	}
	query := url.Values{}
	query.Set("sslmode", sslMode)
	u.RawQuery = query.Encode()
	return u.String()
}
