package domain

import "errors"

var (
	ErrEmptyCatalog        = errors.New("no cards available to select from")
	ErrMissingSuit         = errors.New("minor arcana card has no suit")
	ErrInvalidCard         = errors.New("invalid card")
	ErrInvalidCount        = errors.New("count must be between 1 and 10")
	ErrDeckNotFound        = errors.New("deck not found")
	ErrReadingTypeDisabled = errors.New("reading type not enabled for deck")
	ErrUnknownReadingType  = errors.New("unknown reading type")
	ErrInvalidDate         = errors.New("date must be formatted as YYYY-MM-DD")
	ErrCatalogUnavailable  = errors.New("card catalog unavailable")
	ErrUpstreamLLM         = errors.New("upstream LLM failure")
	ErrInvalidLLMJSON      = errors.New("LLM returned invalid JSON")
)
