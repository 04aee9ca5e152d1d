package treequence

import "errors"

// Errors returned while building or rendering an event tree. All of them are
// caused by malformed input; none are worth retrying.
var (
	ErrUnknownPitchName       = errors.New("unknown pitch name")
	ErrInvalidScale           = errors.New("invalid scale")
	ErrPitchOutOfRange        = errors.New("pitch out of range")
	ErrInvalidDuration        = errors.New("invalid duration")
	ErrInvalidTempo           = errors.New("invalid tempo")
	ErrUndefinedExtent        = errors.New("undefined extent")
	ErrNonFlattenable         = errors.New("event cannot be flattened into a parallel block")
	ErrDuplicateSymbol        = errors.New("symbol already defined")
	ErrDuplicateLoopName      = errors.New("loop name already registered")
	ErrUnknownSymbol          = errors.New("unknown symbol")
	ErrUnknownTransposeTarget = errors.New("event is not transposable")
	ErrInvalidMeasure         = errors.New("invalid measure")
)
