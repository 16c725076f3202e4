package fred

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etnz/realreturn"
	"github.com/etnz/realreturn/date"
)

func newTestClient(t *testing.T, apiKey string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(apiKey, realreturn.ClientOptions{})
	c.BaseURL = srv.URL + "/fred/series/observations"
	return c
}

func TestFetchCpiSeries(t *testing.T) {
	var query map[string]string
	c := newTestClient(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		w.Write([]byte(`{"observations": [
			{"date": "2023-03-01", "value": "301.836"},
			{"date": "2023-04-01", "value": "302.918"},
			{"date": "2023-05-01", "value": "."}
		]}`))
	})

	series, err := c.FetchCpiSeries(context.Background(), "US", date.MustParse("2023-03-15"), date.MustParse("2023-05-31"))
	require.NoError(t, err)

	assert.Equal(t, realreturn.Series{"2023-03": 301.836, "2023-04": 302.918}, series)
	assert.Equal(t, SeriesID, query["series_id"])
	assert.Equal(t, "test-key", query["api_key"])
	assert.Equal(t, "2023-03-01", query["observation_start"], "window starts on the first day of the start month")
	assert.Equal(t, "2023-05-31", query["observation_end"])
}

func TestFetchCpiSeries_NoKey(t *testing.T) {
	called := false
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) { called = true })

	_, err := c.FetchCpiSeries(context.Background(), "US", date.MustParse("2023-03-01"), date.MustParse("2023-04-30"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, realreturn.ErrMissingCredential))
	assert.False(t, errors.Is(err, realreturn.ErrProvider))
	assert.Contains(t, err.Error(), APIKeyEnv)
	assert.False(t, called)
}

func TestFetchCpiSeries_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantErr: realreturn.ErrProvider},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error_message":"bad api key"}`, wantErr: realreturn.ErrProvider},
		{name: "only missing values", status: http.StatusOK, body: `{"observations":[{"date":"2023-03-01","value":"."}]}`, wantErr: realreturn.ErrEmptyResult},
		{name: "no observations", status: http.StatusOK, body: `{"observations":[]}`, wantErr: realreturn.ErrEmptyResult},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, "secret-key", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})
			_, err := c.FetchCpiSeries(context.Background(), "US", date.MustParse("2023-03-01"), date.MustParse("2023-04-30"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.wantErr), "got %v", err)
			assert.False(t, strings.Contains(err.Error(), "secret-key"), "error leaks the api key: %v", err)
		})
	}
}
