// Package metrics counts how macroeconomic data was obtained: which fallback
// tier resolved each CPI series, how provider requests went, and how often
// FX rates came from the cache.
//
// The CLI is short lived, so the counters are exported to a file in the
// node exporter text-file format rather than scraped.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every realreturn collector.
var Registry = prometheus.NewRegistry()

var (
	// CpiResolutions counts resolved CPI series by country and fallback tier.
	CpiResolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "realreturn",
		Name:      "cpi_resolutions_total",
		Help:      "CPI series resolutions by country and fallback tier.",
	}, []string{"country", "tier"})

	// ProviderRequests counts HTTP requests to data providers by outcome.
	ProviderRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "realreturn",
		Name:      "provider_requests_total",
		Help:      "Requests to data providers by provider and outcome.",
	}, []string{"provider", "outcome"})

	// FxLookups counts FX snapshot lookups served from the cache ("hit") or the provider ("miss").
	FxLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "realreturn",
		Name:      "fx_lookups_total",
		Help:      "FX snapshot lookups by cache result.",
	}, []string{"result"})
)

func init() {
	Registry.MustRegister(CpiResolutions, ProviderRequests, FxLookups)
}

// Outcomes of a provider request.
const (
	OK          = "ok"
	HTTPError   = "http_error"
	Transport   = "transport_error"
	CircuitOpen = "circuit_open"
	DecodeError = "decode_error"
)

// WriteTextfile writes the current value of every counter to filename.
func WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, Registry)
}
