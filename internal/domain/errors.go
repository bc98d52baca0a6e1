package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrNotConnected = errors.New("not connected to upstream")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUpstream     = errors.New("upstream request failed")
	ErrRateLimited  = errors.New("rate limited")
)
