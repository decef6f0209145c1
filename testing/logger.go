package testing

import (
	"testing"

	"github.com/arloliu/randcells/internal/logger"
	"github.com/arloliu/randcells/types"
)

// NewTestLogger creates a logger that writes to t.Logf, so log output shows
// up next to the failing test.
func NewTestLogger(t *testing.T) types.Logger {
	return logger.NewTest(t)
}
