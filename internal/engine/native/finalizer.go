package native

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FinalizationService releases foreign memory once its owning Pointer is
// unreachable. Implementations must call release at most once per
// registration and never while the Pointer is still reachable.
type FinalizationService interface {
	RegisterForRelease(p *Pointer, release ReleaseFunc)
}

// ServiceStats counts registrations handled by a service.
type ServiceStats struct {
	Registered int64
	Released   int64
	Failed     int64
}

// Outstanding returns the number of registrations not yet released.
func (s ServiceStats) Outstanding() int64 {
	return s.Registered - s.Released - s.Failed
}

// CleanupService releases memory from runtime cleanups attached to each
// Pointer.
type CleanupService struct {
	logger     zerolog.Logger
	registered atomic.Int64
	released   atomic.Int64
	failed     atomic.Int64
}

// NewCleanupService creates a service that logs releases to logger.
func NewCleanupService(logger zerolog.Logger) *CleanupService {
	return &CleanupService{logger: logger.With().Str("component", "native").Logger()}
}

// RegisterForRelease implements FinalizationService.
func (s *CleanupService) RegisterForRelease(p *Pointer, release ReleaseFunc) {
	s.registered.Add(1)
	runtime.AddCleanup(p, s.run, cleanupArg{id: p.ID(), size: p.Size(), release: release})
}

type cleanupArg struct {
	id      uuid.UUID
	size    int
	release ReleaseFunc
}

func (s *CleanupService) run(arg cleanupArg) {
	freed, err := arg.release()
	switch {
	case err != nil:
		s.logger.Error().Err(err).Stringer("pointer", arg.id).Msg("release failed")
		s.failed.Add(1)
	case freed:
		s.logger.Debug().Stringer("pointer", arg.id).Int("size", arg.size).Msg("released")
		s.released.Add(1)
	default:
		// Freed explicitly before becoming unreachable.
		s.released.Add(1)
	}
}

// Stats returns a snapshot of the service counters.
func (s *CleanupService) Stats() ServiceStats {
	return ServiceStats{
		Registered: s.registered.Load(),
		Released:   s.released.Load(),
		Failed:     s.failed.Load(),
	}
}

// ManualService holds registrations until ReleaseAll is called. It lets
// callers decide exactly when release happens.
type ManualService struct {
	mu      sync.Mutex
	pending []ReleaseFunc
	stats   ServiceStats
}

// NewManualService creates an empty manual service.
func NewManualService() *ManualService {
	return &ManualService{}
}

// RegisterForRelease implements FinalizationService.
func (m *ManualService) RegisterForRelease(_ *Pointer, release ReleaseFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, release)
	m.stats.Registered++
}

// Pending returns the number of registrations awaiting release.
func (m *ManualService) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// ReleaseAll fires every pending release once and returns how many freed
// memory. The first error is returned after all releases ran.
func (m *ManualService) ReleaseAll() (int, error) {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()

	var firstErr error
	freedCount := 0
	for _, release := range pending {
		freed, err := release()
		m.mu.Lock()
		if err != nil {
			m.stats.Failed++
			if firstErr == nil {
				firstErr = err
			}
		} else {
			m.stats.Released++
		}
		m.mu.Unlock()
		if freed {
			freedCount++
		}
	}
	return freedCount, firstErr
}

// Stats returns a snapshot of the service counters.
func (m *ManualService) Stats() ServiceStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}
