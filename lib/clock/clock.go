// Copyright 2026 The Nassif Clinic Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction so the
// realtime channel's warm-up delay and reconnect backoff can be
// tested deterministically.
//
// Production code accepts a Clock instead of calling time.Now,
// time.After, or time.Sleep directly. Real() provides standard
// library behavior; Fake() provides a clock that advances only when
// the test calls Advance.
package clock

import "time"

// Clock abstracts the time operations the dashboard uses. Components
// that wait (channel warm-up, reconnect backoff) take a Clock field;
// tests inject a [FakeClock] and drive it with Advance.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time after
	// duration d elapses. If d <= 0, the channel receives
	// immediately.
	After(d time.Duration) <-chan time.Time

	// Sleep pauses the calling goroutine for at least duration d.
	Sleep(d time.Duration)
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }
