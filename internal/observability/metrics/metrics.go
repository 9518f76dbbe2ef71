package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success                  Outcome       = "success"
	Error                    Outcome       = "error"
	MetricRequestTimeout     time.Duration = 5 * time.Second
	MetricRequestIdleTimeout time.Duration = 10 * time.Second
)

func (O Outcome) String() string {
	return string(O)
}

var defaultHistogramBucketsSeconds = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5}

// Collectors are created eagerly so recording works in tests without Init,
// Init only registers them and exposes the http endpoint.
var (
	once          sync.Once
	metricsRouter *chi.Mux

	queueSendErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "queue_send_error_count",
			Help: "The total number of errors when sending messages to the queue",
		},
	)

	pollerDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_duration_seconds",
			Help:    "Histogram of poller durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"type", "status"},
	)

	dbLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_latency_seconds",
			Help:    "DB latency in seconds splitted by method and execution status",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"method", "status"},
	)

	operationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "staking_operation_duration_seconds",
			Help:    "Duration of staking operations in seconds splitted by operation and status",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"operation", "status"},
	)

	rewardsMintedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_minted_total",
			Help: "Total reward units minted to stakers",
		},
		[]string{"collection"},
	)

	rewardsDiscardedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_discarded_total",
			Help: "Reward units emitted while nothing was staked or lost to truncation",
		},
		[]string{"collection"},
	)

	totalStakedGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "collection_total_staked",
			Help: "Number of assets currently staked in a collection",
		},
		[]string{"collection"},
	)

	rewardsPerShareGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "collection_rewards_per_share",
			Help: "Last known reward accumulator value of a collection",
		},
		[]string{"collection"},
	)
)

// Init initializes the metrics package.
func Init(metricsPort int) {
	once.Do(func() {
		registerMetrics()
		initMetricsRouter(metricsPort)
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	// Create a custom server with timeout settings
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	server := &http.Server{
		Addr:         metricsAddr,
		Handler:      metricsRouter,
		ReadTimeout:  MetricRequestTimeout,
		WriteTimeout: MetricRequestTimeout,
		IdleTimeout:  MetricRequestIdleTimeout,
	}

	// Start the server in a separate goroutine
	go func() {
		log.Printf("Starting metrics server on %s", metricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msgf("Error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics registers the Prometheus metrics.
func registerMetrics() {
	prometheus.MustRegister(
		queueSendErrorCounter,
		pollerDurationHistogram,
		dbLatency,
		operationDuration,
		rewardsMintedCounter,
		rewardsDiscardedCounter,
		totalStakedGauge,
		rewardsPerShareGauge,
	)
}

func outcome(failure bool) Outcome {
	if failure {
		return Error
	}
	return Success
}

func RecordDbLatency(d time.Duration, method string, failure bool) {
	dbLatency.WithLabelValues(method, outcome(failure).String()).Observe(d.Seconds())
}

func RecordOperationDuration(d time.Duration, operation string, failure bool) {
	operationDuration.WithLabelValues(operation, outcome(failure).String()).Observe(d.Seconds())
}

func RecordRewardsMinted(collection string, amount uint64) {
	rewardsMintedCounter.WithLabelValues(collection).Add(float64(amount))
}

func RecordRewardsDiscarded(collection string, amount uint64) {
	rewardsDiscardedCounter.WithLabelValues(collection).Add(float64(amount))
}

func RecordCollectionState(collection string, totalStaked, rewardsPerShare uint64) {
	totalStakedGauge.WithLabelValues(collection).Set(float64(totalStaked))
	rewardsPerShareGauge.WithLabelValues(collection).Set(float64(rewardsPerShare))
}

func RecordQueueSendError() {
	queueSendErrorCounter.Inc()
}
