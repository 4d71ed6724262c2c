package ledger

import "errors"

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotOwner         = errors.New("caller is not the token owner")
	ErrNotWhitelisted   = errors.New("contract address is not whitelisted")
	ErrUnknownToken     = errors.New("unknown token")
	ErrIndexOutOfRange  = errors.New("owner index out of range")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidSignature = errors.New("invalid signature")
)
