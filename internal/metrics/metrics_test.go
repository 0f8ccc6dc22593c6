package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))
}

func TestObserveIssue(t *testing.T) {
	before := testutil.ToFloat64(PlaybackURLsIssued.WithLabelValues("ok"))
	beforeInvalid := testutil.ToFloat64(PlaybackURLsIssued.WithLabelValues("invalid"))

	ObserveIssue("ok", 3*time.Millisecond)
	ObserveIssue("invalid", 0)

	require.Equal(t, before+1, testutil.ToFloat64(PlaybackURLsIssued.WithLabelValues("ok")))
	require.Equal(t, beforeInvalid+1, testutil.ToFloat64(PlaybackURLsIssued.WithLabelValues("invalid")))
}

func TestCacheLookup(t *testing.T) {
	before := testutil.ToFloat64(CatalogCacheLookups.WithLabelValues("movie", "hit"))
	CacheLookup("movie", "hit")
	require.Equal(t, before+1, testutil.ToFloat64(CatalogCacheLookups.WithLabelValues("movie", "hit")))
}
