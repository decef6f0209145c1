// Package testing provides test utilities for randcells.
//
// It starts in-process NATS servers with JetStream so the NATS process group
// can be exercised without external infrastructure, in the spirit of
// net/http/httptest.
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - NewJetStream: JetStream context bound to a test connection
//   - CreateJetStreamKV: Memory-backed KV bucket with a TTL
//   - NewTestLogger: Logger writing to t.Logf
//
// Example usage:
//
//	import (
//	    "testing"
//	    rctest "github.com/arloliu/randcells/testing"
//	)
//
//	func TestSampling(t *testing.T) {
//	    _, nc := rctest.StartEmbeddedNATS(t)
//	    js := rctest.NewJetStream(t, nc)
//	    // build group.NATS members on js
//	}
package testing
