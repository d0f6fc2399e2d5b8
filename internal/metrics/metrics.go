// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder はメトリクス収集のインターフェース。
// ミドルウェアやワーカーから利用する。
type Recorder interface {
	RecordHTTPRequest(method string, statusCode int, duration time.Duration)
	RecordAuthRejection(reason string)
	RecordRevocationSweep(removed int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	authRejections *prometheus.CounterVec
	revokedSwept   prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
// revokedCountが指定された場合、失効済みトークン数をゲージとして公開する。
func NewCollector(reg prometheus.Registerer, revokedCount func() int) *Collector {
	c := &Collector{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todoapi_http_requests_total",
			Help: "メソッド・ステータスコード別のHTTPリクエスト数",
		}, []string{"method", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "todoapi_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		authRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "todoapi_auth_rejections_total",
			Help: "理由別の認証拒否数",
		}, []string{"reason"}),
		revokedSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "todoapi_revoked_tokens_swept_total",
			Help: "期限切れにより失効レジストリから削除されたトークンの合計数",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.authRejections,
		c.revokedSwept,
	)

	if revokedCount != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "todoapi_revoked_tokens",
			Help: "失効レジストリに登録されているトークン数",
		}, func() float64 {
			return float64(revokedCount())
		}))
	}

	return c
}

// RecordHTTPRequest はHTTPリクエストのステータスコードと処理時間を記録する。
func (c *Collector) RecordHTTPRequest(method string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	c.httpDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordAuthRejection は認証拒否を記録する。
func (c *Collector) RecordAuthRejection(reason string) {
	c.authRejections.WithLabelValues(reason).Inc()
}

// RecordRevocationSweep は掃除で削除された失効エントリ数を記録する。
func (c *Collector) RecordRevocationSweep(removed int) {
	c.revokedSwept.Add(float64(removed))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ Recorder = (*Collector)(nil)
