// Package interval implements the half-open time interval algebra that
// underlies the tile cache: a signed 64-bit nanosecond timestamp and the
// [start, stop) interval built from it.
package interval

import "fmt"

// Timestamp is a signed 64-bit nanosecond count, matching the timeline's
// wire representation.
type Timestamp int64

// Interval is a half-open range [Start, Stop). It is empty iff Start == Stop.
// All operations are pure; none mutate the receiver.
type Interval struct {
	Start Timestamp
	Stop  Timestamp
}

// New constructs an interval, panicking if start > stop (a malformed
// interval is a programmer error, never a runtime condition).
func New(start, stop Timestamp) Interval {
	if start > stop {
		panic(fmt.Sprintf("interval: start %d > stop %d", start, stop))
	}
	return Interval{Start: start, Stop: stop}
}

// DurationNs returns Stop - Start. Never negative for a well-formed interval.
func (iv Interval) DurationNs() int64 {
	return int64(iv.Stop) - int64(iv.Start)
}

// Empty reports whether the interval has zero duration.
func (iv Interval) Empty() bool {
	return iv.DurationNs() <= 0
}

// Intersection returns [max(starts), min(stops)). The result may be empty
// (DurationNs() <= 0); callers that need a canonical empty value should
// check Empty() rather than compare against a sentinel.
func (iv Interval) Intersection(other Interval) Interval {
	start := max64(iv.Start, other.Start)
	stop := min64(iv.Stop, other.Stop)
	if start > stop {
		return Interval{Start: start, Stop: start}
	}
	return Interval{Start: start, Stop: stop}
}

// Union returns [min(starts), max(stops)). Only meaningful when the inputs
// overlap or touch; callers are responsible for that precondition.
func (iv Interval) Union(other Interval) Interval {
	return Interval{
		Start: min64(iv.Start, other.Start),
		Stop:  max64(iv.Stop, other.Stop),
	}
}

// ContainsInterval reports whether inner lies entirely within iv.
func (iv Interval) ContainsInterval(inner Interval) bool {
	return iv.Start <= inner.Start && inner.Stop <= iv.Stop
}

// Overlaps reports half-open overlap: touching intervals do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.Stop && other.Start < iv.Stop
}

// Translate shifts both endpoints by deltaNs.
func (iv Interval) Translate(deltaNs int64) Interval {
	return Interval{
		Start: Timestamp(int64(iv.Start) + deltaNs),
		Stop:  Timestamp(int64(iv.Stop) + deltaNs),
	}
}

// SubtractAfter returns the portion of iv strictly before cut:
// [iv.Start, min(iv.Stop, cut)).
func (iv Interval) SubtractAfter(cut Timestamp) Interval {
	stop := min64(iv.Stop, cut)
	if stop < iv.Start {
		stop = iv.Start
	}
	return Interval{Start: iv.Start, Stop: stop}
}

// SubtractBefore returns the portion of iv strictly after cut:
// [max(iv.Start, cut), iv.Stop).
func (iv Interval) SubtractBefore(cut Timestamp) Interval {
	start := max64(iv.Start, cut)
	if start > iv.Stop {
		start = iv.Stop
	}
	return Interval{Start: start, Stop: iv.Stop}
}

func min64(a, b Timestamp) Timestamp {
	if a < b {
		return a
	}
	return b
}

func max64(a, b Timestamp) Timestamp {
	if a > b {
		return a
	}
	return b
}
