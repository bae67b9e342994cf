package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	boltrepo "github.com/taskflow/backend/repository/bolt"
)

// Monitor periodically checks the authoritative store plus the best-effort
// collaborators (cache, broker) and keeps a snapshot for the health endpoint.
// Exactly one of pg/bolt is set, depending on the configured storage backend.
type Monitor struct {
	pg     *pgxpool.Pool
	bolt   *boltrepo.Store
	redis  *redislib.Client
	rabbit *amqp.Connection

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	logger   *zap.Logger
}

func New(pg *pgxpool.Pool, bolt *boltrepo.Store, redis *redislib.Client, rabbit *amqp.Connection, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		pg:       pg,
		bolt:     bolt,
		redis:    redis,
		rabbit:   rabbit,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.stopCh)
}

// IsOnline reports whether the authoritative store is reachable. Cache and
// broker health never gate requests.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Storage
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	status := Status{
		Backend:   m.backendName(),
		Storage:   m.checkStorage(),
		Redis:     m.checkRedis(),
		Rabbit:    m.checkRabbit(),
		LastCheck: time.Now(),
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Monitor) backendName() string {
	if m.pg != nil {
		return "postgres"
	}
	return "bolt"
}

func (m *Monitor) checkStorage() bool {
	if m.pg != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return m.pg.Ping(ctx) == nil
	}
	// bbolt is in-process; an open handle is a healthy one.
	return m.bolt != nil
}

func (m *Monitor) checkRedis() bool {
	if m.redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.redis.Ping(ctx).Err() == nil
}

func (m *Monitor) checkRabbit() bool {
	return m.rabbit != nil && !m.rabbit.IsClosed()
}
