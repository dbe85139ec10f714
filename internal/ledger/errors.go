package ledger

import "errors"

// Kind classifies ledger errors for callers that translate them into
// transport status codes.
type Kind uint8

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindInvalidParameter
	KindStateViolation
	KindAuthorization
	KindQuantity
	KindAssetMismatch
	KindTransfer
	KindReentrancy
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidParameter:
		return "invalid_parameter"
	case KindStateViolation:
		return "state_violation"
	case KindAuthorization:
		return "authorization"
	case KindQuantity:
		return "quantity"
	case KindAssetMismatch:
		return "asset_mismatch"
	case KindTransfer:
		return "transfer"
	case KindReentrancy:
		return "reentrancy"
	}
	return "internal"
}

// Error is a rejected ledger operation. Name is the stable machine-readable
// identifier clients switch on.
type Error struct {
	Name string
	Kind Kind
}

func (e *Error) Error() string { return e.Name }

var (
	ErrBillNotFound                 = &Error{"BillNotFound", KindNotFound}
	ErrBillAlreadyExists            = &Error{"BillAlreadyExists", KindConflict}
	ErrInvalidSharePrice            = &Error{"InvalidSharePrice", KindInvalidParameter}
	ErrInvalidShares                = &Error{"InvalidShares", KindInvalidParameter}
	ErrInvalidFee                   = &Error{"InvalidFee", KindInvalidParameter}
	ErrInvalidToken                 = &Error{"InvalidToken", KindInvalidParameter}
	ErrInvalidRecipient             = &Error{"InvalidRecipient", KindInvalidParameter}
	ErrAmountOverflow               = &Error{"AmountOverflow", KindInvalidParameter}
	ErrOwnableInvalidOwner          = &Error{"OwnableInvalidOwner", KindInvalidParameter}
	ErrBillNotActive                = &Error{"BillNotActive", KindStateViolation}
	ErrNoFeesToWithdraw             = &Error{"NoFeesToWithdraw", KindStateViolation}
	ErrOnlyCreator                  = &Error{"OnlyCreator", KindAuthorization}
	ErrUnauthorizedAccess           = &Error{"UnauthorizedAccess", KindAuthorization}
	ErrUnauthorizedCancellation     = &Error{"UnauthorizedCancellation", KindAuthorization}
	ErrOwnableUnauthorizedAccount   = &Error{"OwnableUnauthorizedAccount", KindAuthorization}
	ErrExcessiveShares              = &Error{"ExcessiveShares", KindQuantity}
	ErrTokenMismatch                = &Error{"TokenMismatch", KindAssetMismatch}
	ErrTransferFailed               = &Error{"TransferFailed", KindTransfer}
	ErrReentrancyGuardReentrantCall = &Error{"ReentrancyGuardReentrantCall", KindReentrancy}
)

// KindOf returns the kind of the outermost ledger error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// NameOf returns the name of the outermost ledger error in err's chain, or
// "" when there is none.
func NameOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Name
	}
	return ""
}
