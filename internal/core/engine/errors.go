package engine

import "errors"

// Validation errors surfaced synchronously from Submit* calls. None of
// these ever mutate engine state — SubmitLimit and SubmitMarket validate
// before assigning an order id. The WithID variants validate after the id
// was reserved, so a rejected order still consumes its reserved id.
var (
	ErrInvalidQuantity = errors.New("engine: quantity must be strictly positive")
	ErrInvalidPrice    = errors.New("engine: price must be finite and strictly positive")
)
