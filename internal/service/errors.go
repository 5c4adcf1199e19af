package service

import (
	"github.com/rosswilson/skylark/internal/domain"
)

// Cart errors
var (
	ErrInvalidQuantity = domain.Errorf(domain.EINVALID, "", "Quantity must be greater than 0")
)

// Checkout errors
var (
	ErrEmptyCart       = domain.Errorf(domain.EINVALID, "", "Cart is empty")
	ErrSessionRequired = domain.Errorf(domain.ENOTFOUND, "", "Payment session id is required")
)
