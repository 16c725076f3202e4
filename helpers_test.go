package realreturn

import (
	"context"
	"errors"
	"sync"

	"github.com/etnz/realreturn/date"
)

// memStore is an in-memory CpiStore and FxStore.
type memStore struct {
	mu      sync.Mutex
	cpi     map[string]CpiEntry
	fx      map[string]float64
	puts    int
	failPut bool
}

func newMemStore() *memStore {
	return &memStore{cpi: make(map[string]CpiEntry), fx: make(map[string]float64)}
}

func (m *memStore) GetCpi(country string) (*CpiEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.cpi[country]
	if !ok {
		return nil, false
	}
	return &e, true
}

func (m *memStore) PutCpi(entry CpiEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if m.failPut {
		return errors.New("disk full")
	}
	m.cpi[entry.Country] = entry
	return nil
}

func fxKey(day date.Date, base, target string) string {
	return day.String() + ":" + base + ":" + target
}

func (m *memStore) GetFx(day date.Date, base, target string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.fx[fxKey(day, base, target)]
	return r, ok
}

func (m *memStore) PutFxBatch(day date.Date, base string, rates map[string]float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	for t, r := range rates {
		m.fx[fxKey(day, base, t)] = r
	}
	return nil
}

// fakeCpi is a CpiProvider returning a fixed series or error.
type fakeCpi struct {
	mu     sync.Mutex
	series map[string]Series
	err    error
	calls  int
}

func (f *fakeCpi) FetchCpiSeries(_ context.Context, country string, _, _ date.Date) (Series, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.series[country], nil
}

// fakeFx is an FxProvider returning fixed rates by day, or an error.
type fakeFx struct {
	mu        sync.Mutex
	rates     map[string]map[string]float64 // by day
	err       error
	calls     int
	requested [][]string
}

func (f *fakeFx) FetchFxRates(_ context.Context, day date.Date, base string, targets []string) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.requested = append(f.requested, targets)
	if f.err != nil {
		return nil, f.err
	}
	res := make(map[string]float64)
	for _, t := range targets {
		res[t] = f.rates[day.String()][t]
	}
	return res, nil
}

func noBundled() (map[string]Series, error) { return nil, nil }
