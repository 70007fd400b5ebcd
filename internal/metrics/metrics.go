// Package metrics exposes Prometheus collectors for the content-sync service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	syncRecordsTotal *prometheus.CounterVec
	syncLinksTotal   *prometheus.CounterVec
	scrapePagesTotal *prometheus.CounterVec
	syncRunsTotal    *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call multiple
// times; observation helpers are no-ops until it runs.
func Init() {
	once.Do(func() {
		syncRecordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contentsync_records_total",
				Help: "Total records processed, labeled by phase and outcome.",
			},
			[]string{"phase", "outcome"},
		)

		syncLinksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contentsync_links_total",
				Help: "Total paragraph-tag link attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		scrapePagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contentsync_scrape_pages_total",
				Help: "Total pages fetched by the scraper, labeled by language and outcome.",
			},
			[]string{"lang", "outcome"},
		)

		syncRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "contentsync_runs_total",
				Help: "Total sync runs, labeled by result.",
			},
			[]string{"result"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRecord counts one record outcome for a phase.
func ObserveRecord(phase, outcome string) {
	if syncRecordsTotal == nil {
		return
	}
	syncRecordsTotal.WithLabelValues(phase, outcome).Inc()
}

// ObserveLink counts one link attempt outcome.
func ObserveLink(outcome string) {
	if syncLinksTotal == nil {
		return
	}
	syncLinksTotal.WithLabelValues(outcome).Inc()
}

// ObservePageFetch counts one scraped page outcome.
func ObservePageFetch(lang, outcome string) {
	if scrapePagesTotal == nil {
		return
	}
	scrapePagesTotal.WithLabelValues(lang, outcome).Inc()
}

// ObserveRun counts one completed sync run.
func ObserveRun(result string) {
	if syncRunsTotal == nil {
		return
	}
	syncRunsTotal.WithLabelValues(result).Inc()
}
