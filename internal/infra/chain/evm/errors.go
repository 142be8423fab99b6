package evm

import "errors"

var (
	// ErrChainRead is returned when a read-only contract call fails.
	ErrChainRead = errors.New("contract call failed")

	// ErrChainWrite is returned when building, signing, broadcasting or
	// confirming a transaction fails.
	ErrChainWrite = errors.New("transaction failed")

	// ErrReverted is returned when a transaction was mined with a failed status.
	ErrReverted = errors.New("transaction reverted")
)
