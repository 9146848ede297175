// Package events publishes slideshow activity to an MQTT broker.
//
// When a broker is configured every finished play is published as JSON to
// <topic>/plays, and <topic>/state carries a retained "online" message that
// the broker replaces with "offline" through the last will when the
// connection drops. Publishing is best effort: a disconnected broker never
// holds up the presenter.
package events
