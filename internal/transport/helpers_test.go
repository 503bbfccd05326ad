package transport

import "time"

const (
	testWait = 5 * time.Second
	testTick = 5 * time.Millisecond
)
