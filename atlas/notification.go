// atlas/notification.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package atlas ties together the navaid database, tile manager,
// palette manager, and flight-track store behind a single Controller,
// publishing typed change notifications on a synchronous bus (spec
// §4.8, §5).
package atlas

// EventType names one kind of change notification the bus carries.
type EventType string

const (
	EventAircraftMoved       EventType = "AircraftMoved"
	EventNewFlightTrack      EventType = "NewFlightTrack"
	EventPalette             EventType = "Palette"
	EventNewPalette          EventType = "NewPalette"
	EventDiscreteContours    EventType = "DiscreteContours"
	EventContourLines        EventType = "ContourLines"
	EventLightingOn          EventType = "LightingOn"
	EventSmoothShading       EventType = "SmoothShading"
	EventAzimuth             EventType = "Azimuth"
	EventElevation           EventType = "Elevation"
	EventMoved               EventType = "Moved"
	EventZoomed              EventType = "Zoomed"
	EventMagTrue             EventType = "MagTrue"
	EventDegMinSec           EventType = "DegMinSec"
	EventMEFs                EventType = "MEFs"
	EventShowTrackInfo       EventType = "ShowTrackInfo"
	EventFlightTrackList     EventType = "FlightTrackList"
	EventFlightTrackModified EventType = "FlightTrackModified"
	EventSceneryChanged      EventType = "SceneryChanged"
	EventPaletteList         EventType = "PaletteList"
	EventOversampling        EventType = "Oversampling"
	EventImageType           EventType = "ImageType"
	EventJPEGQuality         EventType = "JPEGQuality"
)

// Event is one notification published on the bus: its kind, and
// whatever data is relevant to it (a new value, a changed object).
type Event struct {
	Type EventType
	Data any
}

// Callback receives every Event published for the type it subscribed
// to.
type Callback func(Event)

// NotificationBus is a single-threaded, typed publish/subscribe
// registry. Unlike a channel- or mutex-backed event stream, Publish
// invokes every subscribed callback synchronously, on the caller's
// goroutine, in subscription order (spec §5: "there are no locks;
// there is no shared mutable state across threads"). A callback that
// itself publishes during its invocation recurses straight back into
// Publish, so nested events are delivered depth-first rather than
// queued.
type NotificationBus struct {
	subscribers map[EventType][]Callback
}

func NewNotificationBus() *NotificationBus {
	return &NotificationBus{subscribers: make(map[EventType][]Callback)}
}

// Subscribe registers cb to run on every future Publish of t.
func (b *NotificationBus) Subscribe(t EventType, cb Callback) {
	b.subscribers[t] = append(b.subscribers[t], cb)
}

// Publish invokes every callback subscribed to t, in the order they
// subscribed, passing data through to each.
func (b *NotificationBus) Publish(t EventType, data any) {
	event := Event{Type: t, Data: data}
	for _, cb := range b.subscribers[t] {
		cb(event)
	}
}
