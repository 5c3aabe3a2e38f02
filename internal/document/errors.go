package document

import "errors"

var (
	// ErrMarkerMissing means the metadata marker element was not found.
	ErrMarkerMissing = errors.New("marker element not found")

	// ErrPriceRegionMissing means the unit-price region was not found.
	ErrPriceRegionMissing = errors.New("price region not found")
)
