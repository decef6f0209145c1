// Package kvutil provides utilities for working with NATS JetStream KeyValue stores.
package kvutil

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// DefaultMaxRetries is the number of create/open attempts made by EnsureBucket.
const DefaultMaxRetries = 3

// BucketSpec describes a KV bucket used by the transport.
type BucketSpec struct {
	// Name is the bucket name.
	Name string

	// TTL expires entries that were never consumed. Zero keeps them forever.
	TTL time.Duration

	// Memory selects in-memory storage instead of file storage.
	Memory bool

	// Replicas is the stream replica count (defaults to 1).
	Replicas int
}

func (s BucketSpec) config() jetstream.KeyValueConfig {
	storage := jetstream.FileStorage
	if s.Memory {
		storage = jetstream.MemoryStorage
	}

	replicas := s.Replicas
	if replicas <= 0 {
		replicas = 1
	}

	return jetstream.KeyValueConfig{
		Bucket:   s.Name,
		History:  1,
		TTL:      s.TTL,
		Storage:  storage,
		Replicas: replicas,
	}
}

// EnsureBucket creates or opens a KV bucket with retry logic.
//
// Several ranks usually start at once and race to create the same bucket;
// losing the race is not an error, the bucket is opened instead. Transient
// failures are retried with exponential backoff (10ms, 20ms, 40ms...).
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - js: JetStream context
//   - spec: Bucket description
//   - maxRetries: Maximum number of attempts (DefaultMaxRetries when <= 0)
//
// Returns:
//   - jetstream.KeyValue: The KV bucket instance
//   - error: Last error after all attempts, or the context error
//
// Example:
//
//	kv, err := kvutil.EnsureBucket(ctx, js, kvutil.BucketSpec{
//	    Name: "randcells",
//	    TTL:  time.Minute,
//	}, 0)
func EnsureBucket(ctx context.Context, js jetstream.JetStream, spec BucketSpec, maxRetries int) (jetstream.KeyValue, error) {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	cfg := spec.config()

	var lastErr error
	for attempt := range maxRetries {
		kv, err := js.CreateKeyValue(ctx, cfg)
		if err == nil {
			return kv, nil
		}

		if errors.Is(err, jetstream.ErrBucketExists) {
			kv, openErr := js.KeyValue(ctx, cfg.Bucket)
			if openErr == nil {
				return kv, nil
			}
			lastErr = fmt.Errorf("bucket exists but failed to open: %w", openErr)
		} else {
			lastErr = err
		}

		if ctx.Err() != nil {
			return nil, fmt.Errorf("context cancelled during KV bucket creation: %w", ctx.Err())
		}

		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * 10 * time.Millisecond //nolint:gosec // attempt is bounded by maxRetries
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("failed to create/open KV bucket %s after %d attempts: %w",
		cfg.Bucket, maxRetries, lastErr)
}

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidToken reports whether s can be used as a single dot-separated
// component of a KV key or as a bucket name.
func ValidToken(s string) bool {
	return tokenPattern.MatchString(s)
}
