package exception

import "github.com/yanun0323/errors"

// Book errors
var (
	ErrBookDuplicateOrder   = errors.New("book: duplicate order id")
	ErrBookPriceOutOfRange  = errors.New("book: price out of range")
	ErrBookInvalidQuantity  = errors.New("book: invalid quantity")
	ErrBookInvalidSide      = errors.New("book: invalid side")
	ErrBookUnknownStrategy  = errors.New("book: unknown strategy")
	ErrBookInvalidDomain    = errors.New("book: invalid price domain")
	ErrBookQuantityOverflow = errors.New("book: level quantity overflow")
)
