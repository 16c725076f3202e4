package realreturn

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential is matched by errors returned when a provider needs an API key that is not set.
	ErrMissingCredential = errors.New("missing credential")

	// ErrProvider is matched by every *ProviderError.
	ErrProvider = errors.New("provider error")

	// ErrEmptyResult is returned by providers that answered successfully but without any usable data point.
	ErrEmptyResult = errors.New("empty result")

	// ErrNoCpiDataForMonth is returned when a series has no value at all to resolve a month from.
	ErrNoCpiDataForMonth = errors.New("no CPI data for month")

	// ErrNoDataAvailable is returned when a country CPI series cannot be obtained from the cache,
	// the provider, nor the bundled dataset.
	ErrNoDataAvailable = errors.New("no CPI data available")

	// ErrUnsupportedCurrency is returned for currencies outside the registry.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// CredentialError reports a missing API key by the name of the variable that should hold it.
type CredentialError struct {
	Name string // e.g. FRED_API_KEY
}

func (e *CredentialError) Error() string { return e.Name + " not set" }

// Is makes CredentialError match ErrMissingCredential.
func (e *CredentialError) Is(target error) bool { return target == ErrMissingCredential }

// ProviderError reports a transport failure or a non-2xx response from a data provider.
type ProviderError struct {
	Provider   string
	URL        string
	StatusCode int // zero for transport failures
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: GET %s: HTTP %d", e.Provider, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s: GET %s: %v", e.Provider, e.URL, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is makes ProviderError match ErrProvider.
func (e *ProviderError) Is(target error) bool { return target == ErrProvider }
