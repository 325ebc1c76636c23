package jobqueue

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/analytics"
	metrics "github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/metrics/counter"
)

const (
	counterFlushInterval     = 5 * time.Second
	analyticsRefreshInterval = 5 * time.Minute
)

// Manager runs the periodic background tasks: flushing the Redis view
// counters into the database and keeping the analytics snapshot warm.
type Manager struct {
	counterFlushTicker *time.Ticker
	analyticsTicker    *time.Ticker
	stopCh             chan struct{}
	wg                 sync.WaitGroup
	mu                 sync.Mutex
	running            bool
}

var (
	globalManager *Manager
	managerOnce   sync.Once
)

// GetManager returns the global background task manager (singleton)
func GetManager() *Manager {
	managerOnce.Do(func() {
		globalManager = &Manager{
			stopCh: make(chan struct{}),
		}
	})
	return globalManager
}

// Start starts the background tasks
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	m.running = true
	log.Info("[JobQueue Manager] Starting background tasks")

	m.counterFlushTicker = time.NewTicker(counterFlushInterval)
	m.wg.Add(1)
	go m.counterFlushWorker()

	m.analyticsTicker = time.NewTicker(analyticsRefreshInterval)
	m.wg.Add(1)
	go m.analyticsWorker()

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the background tasks and waits for them to finish
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping background tasks...")

	if m.counterFlushTicker != nil {
		m.counterFlushTicker.Stop()
	}
	if m.analyticsTicker != nil {
		m.analyticsTicker.Stop()
	}

	close(m.stopCh)
	m.stopCh = nil
	m.running = false

	m.wg.Wait()

	// Counters still sitting in Redis would be lost on restart.
	if err := metrics.FlushAll(); err != nil {
		log.Errorf("[JobQueue Manager] Final counter flush failed: %v", err)
	}

	log.Info("[JobQueue Manager] Stopped successfully")
}

// counterFlushWorker moves the Redis view counters into the database
func (m *Manager) counterFlushWorker() {
	defer m.wg.Done()
	log.Info("[JobQueue Manager] Started counter flush worker")

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Counter flush worker stopping")
			return
		case <-m.counterFlushTicker.C:
			if err := metrics.FlushAll(); err != nil {
				log.Errorf("[JobQueue Manager] Error flushing view counters: %v", err)
			}
		}
	}
}

// analyticsWorker keeps the admin dashboard snapshot warm
func (m *Manager) analyticsWorker() {
	defer m.wg.Done()
	log.Info("[JobQueue Manager] Started analytics refresh worker")

	for {
		select {
		case <-m.stopCh:
			log.Info("[JobQueue Manager] Analytics refresh worker stopping")
			return
		case <-m.analyticsTicker.C:
			analytics.UpdateCacheIfNeeded()
		}
	}
}
