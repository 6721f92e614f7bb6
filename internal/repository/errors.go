package repository

import "errors"

var (
	ErrDuplicateEmail   = errors.New("email already exists")
	ErrInvalidReference = errors.New("referenced row does not exist")
	ErrNotFound         = errors.New("record not found")
)
