package group

import (
	"errors"

	"github.com/arloliu/randcells/internal/rankclaim"
)

var (
	// ErrClosed is returned by operations on a closed group.
	ErrClosed = errors.New("process group closed")

	// ErrSelfMessage is returned when a rank sends to or receives from itself.
	ErrSelfMessage = errors.New("point-to-point message to self")

	// ErrRankLost is returned once the lease of a claimed rank could not be
	// renewed. The group cannot be used after that; join again.
	ErrRankLost = rankclaim.ErrRankLost
)
