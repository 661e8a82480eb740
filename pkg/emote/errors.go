package emote

import "errors"

var (
	ErrInvalidLength   = errors.New("prefix must be exactly 2 characters")
	ErrPrefixTaken     = errors.New("prefix already in use by another user")
	ErrPrefixRequired  = errors.New("a prefix must be set before managing emotes")
	ErrAlreadyExists   = errors.New("emote already saved")
	ErrNotFound        = errors.New("emote not found")
	ErrEmptyCollection = errors.New("no saved emotes")
)
