package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()
	require.NotSame(t, a.Registry, b.Registry)

	a.EntriesCreated.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.EntriesCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.EntriesCreated))
}

func TestStoreOps_Labels(t *testing.T) {
	m := New()
	m.StoreOps.WithLabelValues("file", "load", "ok").Inc()
	m.StoreOps.WithLabelValues("file", "load", "error").Inc()
	m.StoreOps.WithLabelValues("file", "load", "error").Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.StoreOps.WithLabelValues("file", "load", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.StoreOps))
}
