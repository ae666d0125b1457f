package service

import "errors"

var (
	ErrEntryNotFound      = errors.New("cart entry not found")
	ErrAmountFloor        = errors.New("amount cannot go below the floor")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrCatalogUnavailable = errors.New("catalog returned non-success status")
)

// Outcome is the result of a cart operation. Anything other than OutcomeOK
// left the cart unchanged and produced one notification.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNotFound
	OutcomeAmountFloor
	OutcomeOutOfStock
	OutcomeCatalogFailure
	OutcomeUnexpected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeAmountFloor:
		return "amount_floor"
	case OutcomeOutOfStock:
		return "out_of_stock"
	case OutcomeCatalogFailure:
		return "catalog_failure"
	default:
		return "unexpected"
	}
}

// OutcomeOf classifies an operation error.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrEntryNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrAmountFloor):
		return OutcomeAmountFloor
	case errors.Is(err, ErrInsufficientStock):
		return OutcomeOutOfStock
	case errors.Is(err, ErrCatalogUnavailable):
		return OutcomeCatalogFailure
	default:
		return OutcomeUnexpected
	}
}

type operation string

const (
	opAdd    operation = "add"
	opRemove operation = "remove"
	opUpdate operation = "update"
)

const (
	MsgAddFailed    = "Error adding product"
	MsgRemoveFailed = "Error removing product"
	MsgUpdateFailed = "Error changing product amount"
	MsgAmountFloor  = "Cannot decrease this product's amount any further"
	MsgOutOfStock   = "Requested amount is out of stock"
)

// message picks the user-facing text for a failed operation.
func message(op operation, outcome Outcome) string {
	switch outcome {
	case OutcomeAmountFloor:
		return MsgAmountFloor
	case OutcomeOutOfStock:
		return MsgOutOfStock
	}

	switch op {
	case opAdd:
		return MsgAddFailed
	case opRemove:
		return MsgRemoveFailed
	default:
		return MsgUpdateFailed
	}
}
