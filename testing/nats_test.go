package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartEmbeddedNATS(t *testing.T) {
	ns, nc := StartEmbeddedNATS(t)

	require.NotNil(t, ns)
	require.NotNil(t, nc)
	require.True(t, nc.IsConnected())
	require.True(t, ns.ReadyForConnections(1*time.Second))
	require.True(t, ns.JetStreamEnabled())
}

// TestStartEmbeddedNATS_Parallel verifies parallel servers do not collide on ports.
func TestStartEmbeddedNATS_Parallel(t *testing.T) {
	t.Parallel()

	for range 4 {
		t.Run("parallel", func(t *testing.T) {
			t.Parallel()

			_, nc := StartEmbeddedNATS(t)
			require.True(t, nc.IsConnected())
		})
	}
}

func TestCreateJetStreamKV(t *testing.T) {
	_, nc := StartEmbeddedNATS(t)

	kv := CreateJetStreamKV(t, nc, "test-bucket", time.Minute)
	require.Equal(t, "test-bucket", kv.Bucket())

	_, err := kv.Put(t.Context(), "key", []byte("value"))
	require.NoError(t, err)

	entry, err := kv.Get(t.Context(), "key")
	require.NoError(t, err)
	require.Equal(t, []byte("value"), entry.Value())

	status, err := kv.Status(t.Context())
	require.NoError(t, err)
	require.Equal(t, time.Minute, status.TTL())
}

func TestNewTestLogger(t *testing.T) {
	l := NewTestLogger(t)
	require.NotNil(t, l)
	l.Info("hello", "rank", 1)
}
