// Package metrics records cookbook activity as Prometheus metrics. mealprep
// is a batch tool, so the registry is exported to a node_exporter textfile
// rather than served over HTTP.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mealprep"

// Collector holds the metrics of one process run.
type Collector struct {
	registry *prometheus.Registry

	recipes         prometheus.Gauge
	bankIngredients prometheus.Gauge
	loadDuration    prometheus.Histogram
	loadErrors      *prometheus.CounterVec
	recipesCreated  prometheus.Counter
	staleSummaries  prometheus.Gauge
	imports         *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		recipes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recipes",
			Help:      "Number of recipes in the last loaded cookbook",
		}),
		bankIngredients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bank_ingredients",
			Help:      "Number of ingredients in the loaded ingredient bank",
		}),
		loadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cookbook_load_seconds",
			Help:      "Time spent loading the cookbook directory",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		loadErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Failed loads by source",
		}, []string{"source"}),
		recipesCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recipes_created_total",
			Help:      "Recipes written by create or import",
		}),
		staleSummaries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stale_summaries",
			Help:      "Recipes whose stored nutrition differs from the bank at last verify",
		}),
		imports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Recipe imports by result",
		}, []string{"result"}),
	}
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CookbookLoaded records a successful load of n recipes.
func (c *Collector) CookbookLoaded(n int, took time.Duration) {
	c.recipes.Set(float64(n))
	c.loadDuration.Observe(took.Seconds())
}

// BankLoaded records the size of the ingredient bank.
func (c *Collector) BankLoaded(n int) {
	c.bankIngredients.Set(float64(n))
}

// LoadFailed counts a failed load of source ("cookbook" or "bank").
func (c *Collector) LoadFailed(source string) {
	c.loadErrors.WithLabelValues(source).Inc()
}

func (c *Collector) RecipeCreated() {
	c.recipesCreated.Inc()
}

func (c *Collector) Verified(stale int) {
	c.staleSummaries.Set(float64(stale))
}

// Imported counts an import attempt; result is "ok" or "error".
func (c *Collector) Imported(result string) {
	c.imports.WithLabelValues(result).Inc()
}

// WriteTextfile writes every metric to path in the text exposition format.
// The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
