package nvtxw

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
)

// Event is one exported range event: a colored, named interval on a named
// stream. TimeStart/TimeStop are already translated by the export's zero
// time and narrowed to the wire's unsigned nanosecond representation; a
// timestamp that overflows or stays negative fails the export instead.
type Event struct {
	Stream    string `json:"stream"`
	Name      string `json:"name"`
	TimeStart uint64 `json:"time_start"`
	TimeStop  uint64 `json:"time_stop"`
	Color     uint32 `json:"color"`
}

// argbColor packs an RGBA color the way the exported event schema expects:
// full opacity regardless of the source alpha channel, matching the fixed
// 0xFF the original encoder wrote.
func argbColor(c color.RGBA) uint32 {
	return 0xFF<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// EventSink receives the events an export produces. The concrete NVTX wire
// protocol (schema registration, session/stream handles) is out of scope
// here; EventSink is the seam a real backend would implement against.
type EventSink interface {
	// OpenStream registers a named stream under the given hierarchy path
	// and returns an opaque handle later passed to WriteEvent.
	OpenStream(name, hierarchy string) (string, error)
	WriteEvent(stream string, event Event) error
	CloseStream(stream string) error
	Close() error
}

// NDJSONSink is an EventSink that writes one JSON object per line, useful
// for tests, debugging, and piping into external tooling that doesn't speak
// the native NVTX wire format.
type NDJSONSink struct {
	w   io.Writer
	enc *json.Encoder
}

// NewNDJSONSink wraps w as an NDJSONSink.
func NewNDJSONSink(w io.Writer) *NDJSONSink {
	return &NDJSONSink{w: w, enc: json.NewEncoder(w)}
}

type streamRecord struct {
	Kind      string `json:"kind"`
	Stream    string `json:"stream"`
	Hierarchy string `json:"hierarchy,omitempty"`
}

func (s *NDJSONSink) OpenStream(name, hierarchy string) (string, error) {
	if err := s.enc.Encode(streamRecord{Kind: "open_stream", Stream: name, Hierarchy: hierarchy}); err != nil {
		return "", fmt.Errorf("nvtxw: opening stream %q: %w", name, err)
	}
	return name, nil
}

func (s *NDJSONSink) WriteEvent(stream string, event Event) error {
	event.Stream = stream
	if err := s.enc.Encode(event); err != nil {
		return fmt.Errorf("nvtxw: writing event on stream %q: %w", stream, err)
	}
	return nil
}

func (s *NDJSONSink) CloseStream(stream string) error {
	if err := s.enc.Encode(streamRecord{Kind: "close_stream", Stream: stream}); err != nil {
		return fmt.Errorf("nvtxw: closing stream %q: %w", stream, err)
	}
	return nil
}

func (s *NDJSONSink) Close() error {
	return nil
}

var _ EventSink = (*NDJSONSink)(nil)
