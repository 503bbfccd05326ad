// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides a single-threaded, callback-driven readiness
// multiplexer for resident daemons.
//
// Registrants own Event records and add them to a Loop. The Loop keeps a
// fixed-capacity watch table, blocks in an api.Waiter (select(2) by default,
// epoll(7) optionally) until watched descriptors become readable, moves the
// fired records into a FIFO pending queue while holding its mutex, and then
// invokes their handlers with the mutex released.
//
// One-shot records are removed from the watch table before their handler
// runs, so a handler may re-add its own record. Persistent records stay
// registered until Del is called.
//
// Add and Del may be called from any goroutine. A change made while the
// loop is blocked in its wait does not wake it: it takes effect from the
// next wait. Callers needing prompt shutdown register a self-pipe whose
// handler calls Stop.
package reactor
