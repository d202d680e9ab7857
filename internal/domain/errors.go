package domain

import "errors"

var (
	ErrUnknownCollection = errors.New("unknown patient collection")
	ErrUnknownField      = errors.New("unknown document field")
	ErrUnknownPathway    = errors.New("unknown care pathway")
)
