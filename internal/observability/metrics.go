package observability

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiReqError *Counter

	llmRequests *CounterVec
	llmLatency  *HistogramVec
	llmTokens   *CounterVec

	generations        *CounterVec
	generationDuration *HistogramVec
	docsMatched        *HistogramVec

	ledgerDebited  *CounterVec
	ledgerCredited *CounterVec

	jobRuns     *CounterVec
	jobDuration *HistogramVec
	jobFailures *Counter

	queueDepth *GaugeVec
	dbStats    *GaugeVec
	redisUp    *Gauge
	redisPing  *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(os.Getenv("METRICS_ENABLED"))
	if v == "" {
		return false
	}
	return strings.EqualFold(v, "true") || v == "1" || strings.EqualFold(v, "yes")
}

// Current returns the process-wide metrics, or nil when metrics are disabled.
// Every method is safe on a nil receiver.
func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	v := strings.TrimSpace(os.Getenv("METRICS_SCRAPE_INTERVAL_SECONDS"))
	if v == "" {
		return 10 * time.Second
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 10 * time.Second
	}
	return time.Duration(n) * time.Second
}

func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("fc_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"fc_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		),
		apiInflight: NewGauge("fc_api_inflight_requests", "In-flight API requests."),
		apiReqError: NewCounter("fc_api_requests_error_total", "Total API requests with 5xx status."),

		llmRequests: NewCounterVec("fc_llm_requests_total", "Model gateway requests by model/status.", []string{"model", "status"}),
		llmLatency: NewHistogramVec(
			"fc_llm_request_duration_seconds",
			"Model gateway latency in seconds by model/status.",
			[]string{"model", "status"},
			[]float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		),
		llmTokens: NewCounterVec("fc_llm_tokens_total", "Tokens reported by the model gateway by model.", []string{"model"}),

		generations: NewCounterVec("fc_generation_jobs_total", "Generation jobs reaching a terminal status by model/status.", []string{"model", "status"}),
		generationDuration: NewHistogramVec(
			"fc_generation_job_duration_seconds",
			"Generation job processing time in seconds by status.",
			[]string{"status"},
			[]float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		),
		docsMatched: NewHistogramVec(
			"fc_generation_docs_matched",
			"Documentation entries attached to a generation by platform.",
			[]string{"platform"},
			[]float64{0, 1, 2, 3, 4, 5},
		),

		ledgerDebited:  NewCounterVec("fc_ledger_tokens_debited_total", "Tokens debited from balances by transaction type.", []string{"type"}),
		ledgerCredited: NewCounterVec("fc_ledger_tokens_credited_total", "Tokens credited to balances by transaction type.", []string{"type"}),

		jobRuns: NewCounterVec("fc_worker_job_runs_total", "Worker job runs by job_type/status.", []string{"job_type", "status"}),
		jobDuration: NewHistogramVec(
			"fc_worker_job_duration_seconds",
			"Worker job run duration in seconds by job_type/status.",
			[]string{"job_type", "status"},
			[]float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		),
		jobFailures: NewCounter("fc_worker_job_failures_total", "Worker job runs ending in failure."),

		queueDepth: NewGaugeVec("fc_job_queue_depth", "Job runs by status.", []string{"status"}),
		dbStats:    NewGaugeVec("fc_db_pool", "Database connection pool stats.", []string{"stat"}),
		redisUp:    NewGauge("fc_redis_up", "1 when the last redis ping succeeded."),
		redisPing:  NewGauge("fc_redis_ping_seconds", "Last redis ping latency in seconds."),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiReqError,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.generations, m.generationDuration, m.docsMatched,
		m.ledgerDebited, m.ledgerCredited,
		m.jobRuns, m.jobDuration, m.jobFailures,
		m.queueDepth, m.dbStats, m.redisUp, m.redisPing,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveLLMRequest records one upstream call. status is the HTTP status code
// or a short reason ("timeout", "malformed").
func (m *Metrics) ObserveLLMRequest(model, status string, dur time.Duration, tokens int) {
	if m == nil {
		return
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = "unknown"
	}
	status = strings.TrimSpace(status)
	if status == "" {
		status = "0"
	}
	m.llmRequests.Inc(model, status)
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), model, status)
	}
	if tokens > 0 {
		m.llmTokens.Add(float64(tokens), model)
	}
}

func (m *Metrics) ObserveGeneration(model, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if model == "" {
		model = "unknown"
	}
	m.generations.Inc(model, status)
	if dur > 0 {
		m.generationDuration.Observe(dur.Seconds(), status)
	}
}

func (m *Metrics) ObserveDocsMatched(platform string, n int) {
	if m == nil {
		return
	}
	m.docsMatched.Observe(float64(n), platform)
}

// ObserveLedger records a balance change. Negative amounts count as debits.
func (m *Metrics) ObserveLedger(txType string, amount int) {
	if m == nil || amount == 0 {
		return
	}
	if amount < 0 {
		m.ledgerDebited.Add(float64(-amount), txType)
		return
	}
	m.ledgerCredited.Add(float64(amount), txType)
}

func (m *Metrics) ObserveJobRun(jobType, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if jobType == "" {
		jobType = "unknown"
	}
	m.jobRuns.Inc(jobType, status)
	if dur > 0 {
		m.jobDuration.Observe(dur.Seconds(), jobType, status)
	}
	if isFailureStatus(status) {
		m.jobFailures.Inc()
	}
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.dbStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	interval := scrapeInterval()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = rdb.Close()
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

func (m *Metrics) StartJobQueueCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.collectQueueDepth(ctx, log, db)
			}
		}
	}()
}

func (m *Metrics) collectQueueDepth(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	for _, s := range types.JobRunStatuses() {
		m.queueDepth.Set(0, s)
	}
	var rows []struct {
		Status string
		Count  int64
	}
	if err := db.WithContext(ctx).
		Model(&types.JobRun{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		if log != nil {
			log.Warn("metrics: job queue depth query failed", "error", err)
		}
		return
	}
	for _, row := range rows {
		status := strings.TrimSpace(row.Status)
		if status == "" {
			status = "unknown"
		}
		m.queueDepth.Set(float64(row.Count), status)
	}
}
