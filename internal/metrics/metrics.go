package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	PagesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_pages_fetched_total",
		Help: "Total number of pages successfully fetched",
	})
	BytesFetched = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_bytes_fetched_total",
		Help: "Total bytes downloaded",
	})
	FetchErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_fetch_errors_total",
		Help: "Fetches abandoned after exhausting retries",
	})
	ArticlesStored = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_articles_stored_total",
		Help: "Article records newly persisted by the sink",
	})
	DuplicatesIgnored = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_duplicates_ignored_total",
		Help: "Sink puts dropped as benign uniqueness violations",
	})
	SinkFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_sink_failures_total",
		Help: "Records dropped due to non-duplicate persistence faults",
	})
)

func init() {
	prometheus.MustRegister(
		PagesFetched, BytesFetched, FetchErrors,
		ArticlesStored, DuplicatesIgnored, SinkFailures,
	)
}
