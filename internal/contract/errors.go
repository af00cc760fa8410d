package contract

import "errors"

var (
	ErrNotFound              = errors.New("contract not found")
	ErrUnknownStage          = errors.New("unknown stage")
	ErrUnknownTemplate       = errors.New("unknown template")
	ErrNumberRequired        = errors.New("contract number is required")
	ErrJustificationTooShort = errors.New("justification must have at least 15 characters")
)
