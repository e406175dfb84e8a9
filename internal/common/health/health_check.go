package health

import (
	"runtime"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Status represents the overall health of the application
type Status struct {
	Status    string                 `json:"status"` // "healthy" or "degraded"
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Checks    map[string]interface{} `json:"checks"`
	Duration  int64                  `json:"duration_ms"`
}

// SystemMetrics captures current process metrics
type SystemMetrics struct {
	MemoryUsageMB  uint64 `json:"memory_usage_mb"`
	GoroutineCount int    `json:"goroutine_count"`
	CPUNumCores    int    `json:"cpu_num_cores"`
	Uptime         int64  `json:"uptime_seconds"`
}

// Checker provides health check functionality over the store's database
type Checker struct {
	db        *gorm.DB
	version   string
	startTime time.Time

	mu         sync.RWMutex
	lastStatus string
}

// NewChecker creates a new health checker
func NewChecker(db *gorm.DB, version string) *Checker {
	return &Checker{
		db:        db,
		version:   version,
		startTime: time.Now(),
	}
}

// Check performs a complete health check
func (hc *Checker) Check() Status {
	start := time.Now()
	status := Status{
		Timestamp: start,
		Version:   hc.version,
		Checks:    make(map[string]interface{}),
	}

	dbHealthy, dbDetail := hc.checkDatabase()
	status.Checks["database"] = dbDetail

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	memoryMB := m.Alloc / 1024 / 1024
	memHealthy := memoryMB < 500
	status.Checks["memory"] = map[string]interface{}{
		"healthy":      memHealthy,
		"allocated_mb": memoryMB,
		"num_gc":       m.NumGC,
	}

	goroutines := runtime.NumGoroutine()
	status.Checks["goroutines"] = map[string]interface{}{
		"count":   goroutines,
		"healthy": goroutines < 10000,
	}
	status.Checks["uptime_seconds"] = int64(time.Since(hc.startTime).Seconds())

	if dbHealthy && memHealthy && goroutines < 10000 {
		status.Status = "healthy"
	} else {
		status.Status = "degraded"
	}
	status.Duration = time.Since(start).Milliseconds()

	hc.mu.Lock()
	hc.lastStatus = status.Status
	hc.mu.Unlock()

	return status
}

func (hc *Checker) checkDatabase() (bool, map[string]interface{}) {
	if hc.db == nil {
		return false, map[string]interface{}{"healthy": false, "error": "database not initialized"}
	}

	start := time.Now()
	sqlDB, err := hc.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		return false, map[string]interface{}{"healthy": false, "error": err.Error()}
	}

	return true, map[string]interface{}{
		"healthy":    true,
		"latency_ms": time.Since(start).Milliseconds(),
	}
}

// IsReady returns true if the database can serve traffic
func (hc *Checker) IsReady() bool {
	if hc.db == nil {
		return false
	}
	sqlDB, err := hc.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.Ping() == nil
}

// IsAlive returns true while the process is responsive
func (hc *Checker) IsAlive() bool {
	return true
}

// Metrics returns current system metrics
func (hc *Checker) Metrics() SystemMetrics {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SystemMetrics{
		MemoryUsageMB:  m.Alloc / 1024 / 1024,
		GoroutineCount: runtime.NumGoroutine(),
		CPUNumCores:    runtime.NumCPU(),
		Uptime:         int64(time.Since(hc.startTime).Seconds()),
	}
}
