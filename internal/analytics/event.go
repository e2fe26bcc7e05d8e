// Package analytics implements the listen-event pipeline: validating and
// recording inbound events as counter increments, and assembling the
// aggregated report back out of the flat counter namespace.
package analytics

import (
	"errors"
	"net"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// EventQualifyingListen is the one event type that counts as a genuine
// listen for the primary play counters. Everything else is a lighter
// engagement marker tracked only in the per-track breakdown.
const EventQualifyingListen = "30s_listen"

// EventUnknown is assigned when the client omits the event type.
const EventUnknown = "unknown"

const maxTrackIDLen = 200

var validate = validator.New()

// ListenEvent is the client-submitted payload of the ingest endpoint.
// Event is a legacy alias some players still send instead of EventType.
type ListenEvent struct {
	TrackID   string `json:"trackId" validate:"required,max=200"`
	EventType string `json:"eventType"`
	Event     string `json:"event"`
}

var (
	ErrTrackIDRequired = errors.New("trackId is required and must be valid")
	ErrTrackIDInvalid  = errors.New("trackId contains invalid characters")
)

// Normalize validates the payload and resolves the effective event type.
// It must be called before the event reaches the store.
func (e *ListenEvent) Normalize() error {
	if err := validate.Struct(e); err != nil {
		return ErrTrackIDRequired
	}
	if strings.ContainsAny(e.TrackID, "<>") {
		return ErrTrackIDInvalid
	}
	if e.EventType == "" {
		e.EventType = e.Event
	}
	if e.EventType == "" {
		e.EventType = EventUnknown
	}
	return nil
}

// RequestMeta is the ambient request context an event is classified by.
type RequestMeta struct {
	IP        net.IP
	Country   string
	UserAgent string
	Now       time.Time
}

// LogRecord is one diagnostic-log entry, stored as JSON and returned
// verbatim by the report.
type LogRecord struct {
	IP        string `json:"ip"`
	Country   string `json:"country"`
	UserAgent string `json:"userAgent"`
	TrackID   string `json:"trackId"`
	EventType string `json:"eventType"`
	Timestamp string `json:"timestamp"`
}
