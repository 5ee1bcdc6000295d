// Package health reports whether the service and its dependencies can serve traffic.
package health

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

const (
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	checkOK        = "ok"
)

// Checker represents a dependency health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// SystemStats is a snapshot of the host the process runs on.
type SystemStats struct {
	MemoryTotal       uint64  `json:"memoryTotal"`
	MemoryAvailable   uint64  `json:"memoryAvailable"`
	MemoryUsedPercent float64 `json:"memoryUsedPercent"`
	UptimeSeconds     uint64  `json:"uptimeSeconds"`
	Goroutines        int     `json:"goroutines"`
}

// Report is the readiness response body.
type Report struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Details map[string]string `json:"details,omitempty"`
	System  *SystemStats      `json:"system,omitempty"`
}

// Ready reports whether every checker passed.
func (r Report) Ready() bool { return r.Status == StatusReady }

// ReadinessUseCase describes readiness verification.
type ReadinessUseCase interface {
	Ready(ctx context.Context) Report
}

// Service aggregates dependency checkers.
type Service struct {
	checkers []Checker
	stats    func(ctx context.Context) (SystemStats, error)
}

// NewService aggregates dependency checkers.
func NewService(checkers ...Checker) *Service {
	return &Service{checkers: checkers, stats: collectSystemStats}
}

// Ready runs every checker. A failing checker does not stop the others, so the
// report lists every broken dependency at once.
func (s *Service) Ready(ctx context.Context) Report {
	checks := make(map[string]string, len(s.checkers))
	details := make(map[string]string)
	for _, ch := range s.checkers {
		if err := ch.Check(ctx); err != nil {
			log.Warn().Err(err).Str("checker", ch.Name()).Msg("Readiness check failed")
			details[ch.Name()] = err.Error()
			continue
		}
		checks[ch.Name()] = checkOK
	}
	if len(details) > 0 {
		return Report{Status: StatusNotReady, Details: details}
	}

	report := Report{Status: StatusReady, Checks: checks}
	stats, err := s.stats(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("Could not collect system stats")
		return report
	}
	report.System = &stats
	return report
}

func collectSystemStats(ctx context.Context) (SystemStats, error) {
	stats := SystemStats{Goroutines: runtime.NumGoroutine()}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return stats, err
	}
	stats.MemoryTotal = vm.Total
	stats.MemoryAvailable = vm.Available
	stats.MemoryUsedPercent = vm.UsedPercent

	uptime, err := host.UptimeWithContext(ctx)
	if err != nil {
		return stats, err
	}
	stats.UptimeSeconds = uptime
	return stats, nil
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// DatabaseChecker pings the sqlite connection pool.
type DatabaseChecker struct {
	db      Pinger
	timeout time.Duration
}

func NewDatabaseChecker(db Pinger) *DatabaseChecker {
	return &DatabaseChecker{db: db, timeout: time.Second}
}

func (c *DatabaseChecker) Name() string { return "database" }

func (c *DatabaseChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.db.PingContext(ctx)
}
