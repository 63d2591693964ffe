//go:build integration

package app_test

import "time"

const (
	defaultWait  = 10 * time.Second
	pollInterval = 100 * time.Millisecond
)
