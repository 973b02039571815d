package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/honganh1206/openclawd/server/data"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const collectTimeout = 5 * time.Second

type metrics struct {
	registry         *prometheus.Registry
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	activitiesLogged *prometheus.CounterVec
	tasksProcessed   *prometheus.CounterVec
}

func newMetrics(activities *data.ActivityModel, logger *slog.Logger) *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openclawd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by method and status code.",
		}, []string{"method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "openclawd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time spent serving HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		activitiesLogged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openclawd",
			Subsystem: "activities",
			Name:      "logged_total",
			Help:      "Activities recorded, by type.",
		}, []string{"type"}),
		tasksProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "openclawd",
			Subsystem: "tasks",
			Name:      "processed_total",
			Help:      "Tasks handled by /api/process, by outcome.",
		}, []string{"status"}),
	}

	m.registry.MustRegister(
		m.requests,
		m.requestDuration,
		m.activitiesLogged,
		m.tasksProcessed,
		newActivityCollector(activities, logger),
		collectors.NewGoCollector(),
	)

	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *metrics) observeRequest(method string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// activityCollector reports the number of stored activities per status at
// scrape time.
type activityCollector struct {
	activities *data.ActivityModel
	logger     *slog.Logger
	desc       *prometheus.Desc
}

func newActivityCollector(activities *data.ActivityModel, logger *slog.Logger) *activityCollector {
	return &activityCollector{
		activities: activities,
		logger:     logger,
		desc: prometheus.NewDesc(
			"openclawd_activities",
			"Activities currently stored, by status.",
			[]string{"status"}, nil,
		),
	}
}

func (c *activityCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *activityCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	counts, err := c.activities.Counts(ctx)
	if err != nil {
		c.logger.Error("failed to collect activity metrics", "error", err)
		ch <- prometheus.NewInvalidMetric(c.desc, err)
		return
	}

	for status, n := range map[string]int{
		data.StatusPending:   counts.Pending,
		data.StatusRunning:   counts.Running,
		data.StatusCompleted: counts.Completed,
		data.StatusFailed:    counts.Failed,
		"other":              counts.Other(),
	} {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), status)
	}
}
