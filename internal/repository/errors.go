package repository

import "errors"

var (
	ErrBeatNotFound   = errors.New("beat not found")
	ErrBundleNotFound = errors.New("bundle not found")
)
