package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/mem"

	"transportadoras-server-go/internal/domain/carrier"
	platformerrors "transportadoras-server-go/internal/platform/errors"
	"transportadoras-server-go/internal/platform/logging"
)

// Service reports gateway and store reachability. Registered outside the
// session gate: monitors must reach it without credentials.
type Service struct {
	carriers *carrier.Service
	logger   *logging.Logger
	started  time.Time
}

func NewService(carriers *carrier.Service, logger *logging.Logger) (*Service, error) {
	if carriers == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "health.new", "carrier service is required")
	}
	if logger == nil {
		return nil, platformerrors.New(platformerrors.KindConfig, "health.new", "logger is required")
	}
	return &Service{
		carriers: carriers,
		logger:   logger,
		started:  time.Now(),
	}, nil
}

func (s *Service) Register(ctx context.Context, engine *gin.Engine) error {
	engine.GET("/health", s.handleHealth)
	return nil
}

type report struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Carriers  int64  `json:"transportadoras"`
	System    system `json:"system"`
	Error     string `json:"error,omitempty"`
}

type system struct {
	UptimeSeconds  int64   `json:"uptime_seconds"`
	MemUsedPercent float64 `json:"mem_used_percent"`
}

func (s *Service) handleHealth(c *gin.Context) {
	out := report{
		Status:    "healthy",
		Database:  "connected",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "transportadoras",
		System:    s.systemStats(),
	}

	count, err := s.carriers.Count(c.Request.Context())
	if err != nil {
		s.logger.ErrorTag("health", "store probe failed: %v", err)
		out.Status = "unhealthy"
		out.Database = "disconnected"
		out.Error = err.Error()
		c.JSON(http.StatusInternalServerError, out)
		return
	}

	out.Carriers = count
	c.JSON(http.StatusOK, out)
}

func (s *Service) systemStats() system {
	stats := system{
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.MemUsedPercent = vm.UsedPercent
	}
	return stats
}
