package exception

import "github.com/yanun0323/errors"

// Frame errors
var (
	ErrFrameEmpty       = errors.New("frame: empty buffer")
	ErrFrameUnknownKind = errors.New("frame: unknown kind")
	ErrFrameTruncated   = errors.New("frame: payload truncated")
	ErrFrameNilMessage  = errors.New("frame: nil message")
)
