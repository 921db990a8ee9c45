package game

import "errors"

// Rule-violation errors. These are expected outcomes of player actions:
// the action is rejected, the error is reported, and no state changes.
var (
	ErrUnknownPlayer         = errors.New("unknown player")
	ErrUnknownCompany        = errors.New("unknown company")
	ErrUnknownTrainType      = errors.New("unknown train type")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientShares    = errors.New("insufficient shares")
	ErrNoMatchingCertificate = errors.New("no matching certificate")
	ErrCannotDumpPresidency  = errors.New("no player can take over the presidency")
	ErrCertLimit             = errors.New("certificate limit exceeded")
	ErrHoldLimit             = errors.New("holding limit for company exceeded")
	ErrPoolLimit             = errors.New("bank pool limit for company exceeded")
	ErrCompanyNotStarted     = errors.New("company has not started")
	ErrCompanyClosed         = errors.New("company is closed")
	ErrNotPresident          = errors.New("player is not the company president")
	ErrTrainLimit            = errors.New("train limit reached")
	ErrInvalidPar            = errors.New("not a valid par price")
)
