package exception

import "github.com/yanun0323/errors"

// General errors
var (
	ErrInternal = errors.New("internal error")
)
