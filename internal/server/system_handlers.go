package server

import (
	"net/http"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

type systemStatus struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemPercent    float64 `json:"mem_percent"`
	DiskPercent   float64 `json:"disk_percent"`

	ResultsDB struct {
		Name         string  `json:"name"`
		SizeMB       float64 `json:"size_mb"`
		WALSizeMB    float64 `json:"wal_size_mb"`
		PageCount    int64   `json:"page_count"`
		StoredRuns   int     `json:"stored_runs"`
		LatestRunID  string  `json:"latest_run_id,omitempty"`
		HealthStatus string  `json:"health_status"`
	} `json:"results_db"`
}

// handleSystemStatus reports host and results-database health.
// GET /api/system/status
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	status := systemStatus{
		Status:        "ok",
		UptimeSeconds: time.Since(s.started).Seconds(),
	}

	// 100ms sample keeps the endpoint responsive for pollers.
	if cpuPercent, err := cpu.Percent(100*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		status.CPUPercent = cpuPercent[0]
	} else if err != nil {
		s.log.Warn().Err(err).Msg("Failed to sample CPU usage")
	}

	if memStat, err := mem.VirtualMemory(); err == nil {
		status.MemPercent = memStat.UsedPercent
	} else {
		s.log.Warn().Err(err).Msg("Failed to read memory statistics")
	}

	if diskStat, err := disk.Usage("/"); err == nil {
		status.DiskPercent = diskStat.UsedPercent
	} else {
		s.log.Warn().Err(err).Msg("Failed to read disk usage")
	}

	status.ResultsDB.Name = s.resultsDB.Name()
	status.ResultsDB.HealthStatus = "ok"
	if err := s.resultsDB.HealthCheck(r.Context()); err != nil {
		status.ResultsDB.HealthStatus = "failed"
		status.Status = "degraded"
	}
	if stats, err := s.resultsDB.GetStats(); err == nil {
		status.ResultsDB.SizeMB = float64(stats.SizeBytes) / 1024 / 1024
		status.ResultsDB.WALSizeMB = float64(stats.WALSizeBytes) / 1024 / 1024
		status.ResultsDB.PageCount = stats.PageCount
	} else {
		s.log.Warn().Err(err).Msg("Failed to read results database statistics")
	}

	if runs, err := s.repo.ListRuns(r.Context(), 0); err == nil {
		status.ResultsDB.StoredRuns = len(runs)
		if len(runs) > 0 {
			status.ResultsDB.LatestRunID = runs[0].ID
		}
	} else {
		s.log.Warn().Err(err).Msg("Failed to count stored runs")
	}

	s.writeJSON(w, http.StatusOK, status)
}
