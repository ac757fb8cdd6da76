package book

import (
	"github.com/yanun0323/errors"

	"mdcore/internal/schema"
	"mdcore/pkg/exception"
)

const DefaultDomainSize = 256

// Domain is the bounded price range of an array book. Size must be a power of two; bids use the
// lower half of the level array and asks the upper half, so valid raw prices are
// [1, Size/2-1].
type Domain struct {
	Size int `json:"size"`
}

// DefaultDomain returns a 256 level domain, prices 1 through 127.
func DefaultDomain() Domain {
	return Domain{Size: DefaultDomainSize}
}

func (d Domain) withDefaults() Domain {
	if d.Size == 0 {
		d.Size = DefaultDomainSize
	}
	return d
}

// Validate checks if the domain is usable.
func (d Domain) Validate() error {
	if d.Size < 4 || d.Size&(d.Size-1) != 0 {
		return errors.Wrapf(exception.ErrBookInvalidDomain, "size %d must be a power of two >= 4", d.Size)
	}
	return nil
}

func (d Domain) half() int64 {
	return int64(d.Size / 2)
}

// MinPrice is the lowest accepted raw price.
func (d Domain) MinPrice() schema.Price {
	return 1
}

// MaxPrice is the highest accepted raw price.
func (d Domain) MaxPrice() schema.Price {
	return schema.Price(d.withDefaults().half() - 1)
}

// Clamp forces price into [MinPrice, MaxPrice].
func (d Domain) Clamp(price schema.Price) schema.Price {
	return min(max(price, d.MinPrice()), d.MaxPrice())
}

// Contains reports whether price is inside the domain.
func (d Domain) Contains(price schema.Price) bool {
	return price >= d.MinPrice() && price <= d.MaxPrice()
}
