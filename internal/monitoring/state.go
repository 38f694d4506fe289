package monitoring

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

type statStore struct {
	cacheHits          atomic.Uint64
	cacheMisses        atomic.Uint64
	cacheErrors        atomic.Uint64
	cacheBypassed      atomic.Uint64
	cacheInvalidations atomic.Uint64
	cacheReachable     atomic.Bool

	maintenance sync.Map // string -> *maintenanceStats
}

func newStatStore() *statStore {
	store := &statStore{}
	store.cacheReachable.Store(true)
	return store
}

func (s *statStore) cloneMaintenance() []MaintenanceJobSummary {
	summaries := []MaintenanceJobSummary{}
	s.maintenance.Range(func(key, value any) bool {
		job := key.(string)
		stats := value.(*maintenanceStats)
		summaries = append(summaries, stats.snapshot(job))
		return true
	})
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Job < summaries[j].Job })
	return summaries
}

func (s *statStore) summary() Summary {
	hits := s.cacheHits.Load()
	misses := s.cacheMisses.Load()
	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}

	return Summary{
		GeneratedAt: time.Now(),
		Cache: CacheSummary{
			Hits:          hits,
			Misses:        misses,
			Errors:        s.cacheErrors.Load(),
			Bypassed:      s.cacheBypassed.Load(),
			HitRatio:      ratio,
			Invalidations: s.cacheInvalidations.Load(),
			Reachable:     s.cacheReachable.Load(),
		},
		Maintenance: MaintenanceSummary{
			Jobs: s.cloneMaintenance(),
		},
	}
}

func (s *statStore) recordCacheLookup(result string) {
	switch result {
	case "hit":
		s.cacheHits.Add(1)
	case "miss":
		s.cacheMisses.Add(1)
	case "bypass":
		s.cacheBypassed.Add(1)
	default:
		s.cacheErrors.Add(1)
	}
}

func (s *statStore) maintenanceEntry(job string) *maintenanceStats {
	value, ok := s.maintenance.Load(job)
	if ok {
		return value.(*maintenanceStats)
	}
	stats := &maintenanceStats{}
	actual, _ := s.maintenance.LoadOrStore(job, stats)
	return actual.(*maintenanceStats)
}

type maintenanceStats struct {
	lastStatus           atomic.Value // string
	lastError            atomic.Value // string
	lastRun              atomic.Int64 // unix nano
	lastDuration         atomic.Int64 // nanoseconds
	lastRemoved          atomic.Int64
	consecutiveFailures  atomic.Uint64
	totalRuns            atomic.Uint64
	lastSuccessfulRun    atomic.Int64
	consecutiveSuccesses atomic.Uint64
}

func (m *maintenanceStats) snapshot(job string) MaintenanceJobSummary {
	status, _ := m.lastStatus.Load().(string)
	errMsg, _ := m.lastError.Load().(string)

	return MaintenanceJobSummary{
		Job:                 job,
		LastStatus:          status,
		LastRunAt:           time.Unix(0, m.lastRun.Load()),
		LastDuration:        time.Duration(m.lastDuration.Load()),
		LastError:           errMsg,
		LastRemoved:         m.lastRemoved.Load(),
		ConsecutiveFailures: m.consecutiveFailures.Load(),
		ConsecutiveSuccess:  m.consecutiveSuccesses.Load(),
		LastSuccessAt:       time.Unix(0, m.lastSuccessfulRun.Load()),
		TotalRuns:           m.totalRuns.Load(),
	}
}

func (m *maintenanceStats) record(result, message string, removed int64, duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	now := time.Now()
	m.lastStatus.Store(result)
	m.lastError.Store(message)
	m.lastRun.Store(now.UnixNano())
	m.lastDuration.Store(int64(duration))
	m.lastRemoved.Store(removed)
	m.totalRuns.Add(1)

	switch result {
	case "success":
		m.consecutiveFailures.Store(0)
		m.consecutiveSuccesses.Add(1)
		m.lastSuccessfulRun.Store(now.UnixNano())
	default:
		m.consecutiveFailures.Add(1)
		m.consecutiveSuccesses.Store(0)
	}
}
