package domain

import "math/big"

// Listing is a model offered on the marketplace contract.
// It exists only on chain; the service never keeps a copy.
type Listing struct {
	Name  string
	Price *big.Int // smallest currency unit
	URL   string
}
