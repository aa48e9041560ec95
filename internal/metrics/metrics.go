// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラー層から利用する。
type MetricsCollector interface {
	RecordCheckin(path string, status string)
	RecordCheckinRejected(path string, code string)
	RecordDuplicateConflict()
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	checkinTotal    *prometheus.CounterVec
	checkinRejected *prometheus.CounterVec
	duplicateTotal  prometheus.Counter
	httpStatus      *prometheus.CounterVec
	requestLatency  prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		checkinTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dailycheck_checkin_total",
			Help: "登録された打刻の合計数（経路・状態別）",
		}, []string{"path", "status"}),
		checkinRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dailycheck_checkin_rejected_total",
			Help: "拒否された打刻要求の合計数（経路・エラーコード別）",
		}, []string{"path", "code"}),
		duplicateTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dailycheck_duplicate_conflict_total",
			Help: "一意制約との競合で拒否された打刻の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dailycheck_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dailycheck_request_latency_seconds",
			Help:    "APIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.checkinTotal,
		c.checkinRejected,
		c.duplicateTotal,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordCheckin は打刻の成功を記録する。pathは"live"または"retro"。
func (c *Collector) RecordCheckin(path string, status string) {
	c.checkinTotal.WithLabelValues(path, status).Inc()
}

// RecordCheckinRejected は打刻要求の拒否を記録する。
func (c *Collector) RecordCheckinRejected(path string, code string) {
	c.checkinRejected.WithLabelValues(path, code).Inc()
}

// RecordDuplicateConflict は重複打刻の競合を記録する。
func (c *Collector) RecordDuplicateConflict() {
	c.duplicateTotal.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
