package exception

import "github.com/yanun0323/errors"

// Config errors
var (
	ErrConfigRead    = errors.New("config: read file")
	ErrConfigDecode  = errors.New("config: decode")
	ErrConfigInvalid = errors.New("config: invalid")
)
