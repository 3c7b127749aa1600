package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/viktsys/playerstats/export"
	"github.com/viktsys/playerstats/metrics"
	"github.com/viktsys/playerstats/models"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "playerstats_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"endpoint", "method", "status"},
	)
	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "playerstats_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"endpoint"},
	)
	datasetDays = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "playerstats_dataset_days",
			Help: "Number of days in the served dataset",
		},
	)
)

// RangeQuery selects the visible sub-range. Preset wins over start/end.
type RangeQuery struct {
	Start  string `form:"start" binding:"omitempty,datetime=2006-01-02"`
	End    string `form:"end" binding:"omitempty,datetime=2006-01-02"`
	Preset string `form:"preset" binding:"omitempty,oneof=1M 3M 6M 1Y ALL"`
}

// Handler serves a merged series loaded once at startup. The series is never
// mutated; every request slices it and runs the metrics builder.
type Handler struct {
	points  []models.DailyPoint
	sources []string
	builder metrics.Builder
	logger  *zap.Logger
}

func NewHandler(points []models.DailyPoint, builder metrics.Builder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := metrics.CheckSorted(points); err != nil {
		logger.Warn("dataset is not sorted, sorting by date", zap.Error(err))
		points = append([]models.DailyPoint(nil), points...)
		sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	}
	datasetDays.Set(float64(len(points)))

	return &Handler{
		points:  points,
		sources: sourceIDs(points),
		builder: builder,
		logger:  logger,
	}
}

func sourceIDs(points []models.DailyPoint) []string {
	seen := make(map[string]struct{})
	for _, p := range points {
		for id := range p.Sources {
			seen[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (h *Handler) selectRange(c *gin.Context) (metrics.DateRange, []models.DailyPoint, bool) {
	var q RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return metrics.DateRange{}, nil, false
	}

	r := metrics.DateRange{Start: q.Start, End: q.End}
	if q.Preset != "" {
		var err error
		r, err = metrics.ResolvePreset(h.points, q.Preset)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return metrics.DateRange{}, nil, false
		}
	}
	if r.Start != "" && r.End != "" && r.Start > r.End {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start must not be after end"})
		return metrics.DateRange{}, nil, false
	}

	return r, metrics.FilterRange(h.points, r), true
}

// GetDaily returns the merged points of the selected range.
func (h *Handler) GetDaily(c *gin.Context) {
	r, points, ok := h.selectRange(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"range": r, "sources": h.sources, "points": points})
}

// GetStats returns the summary statistics of the selected range.
func (h *Handler) GetStats(c *gin.Context) {
	_, points, ok := h.selectRange(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.builder.BuildStats(points))
}

// GetRows returns the table rows of the selected range.
func (h *Handler) GetRows(c *gin.Context) {
	r, points, ok := h.selectRange(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"range": r, "sources": h.sources, "rows": metrics.BuildTableRows(points)})
}

func (h *Handler) ExportCSV(c *gin.Context) {
	h.export(c, "csv", "text/csv; charset=utf-8", export.WriteCSV)
}

func (h *Handler) ExportXLSX(c *gin.Context) {
	h.export(c, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", export.WriteXLSX)
}

type exportFunc func(w io.Writer, sources []string, rows []models.TableRow) error

func (h *Handler) export(c *gin.Context, ext, contentType string, write exportFunc) {
	_, points, ok := h.selectRange(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, h.sources, metrics.BuildTableRows(points)); err != nil {
		h.logger.Error("export failed", zap.String("format", ext), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="daily-players.%s"`, ext))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// observe records request metrics and logs every request.
func observe(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := c.Writer.Status()
		took := time.Since(start)

		requestsTotal.WithLabelValues(endpoint, c.Request.Method, fmt.Sprint(status)).Inc()
		requestDuration.WithLabelValues(endpoint).Observe(took.Seconds())
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", took))
	}
}

func SetupRoutes(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(observe(h.logger), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "days": len(h.points)})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/daily", h.GetDaily)
		api.GET("/stats", h.GetStats)
		api.GET("/rows", h.GetRows)
		api.GET("/export.csv", h.ExportCSV)
		api.GET("/export.xlsx", h.ExportXLSX)
	}

	return r
}
