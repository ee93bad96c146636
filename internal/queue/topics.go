package queue

import (
	"fmt"

	"github.com/udite/city-telemetry/internal/event"
)

// Topics derives the channel names of the UDiTE hierarchy. Kafka topic names
// use dot separators: <root>.<city>.data.get.<suffix> inbound,
// <root>.<city>.data.post.<suffix> outbound, <root>.<city>.alert for alerts.
type Topics struct {
	Root string
	City string
}

// Inbound returns the raw-event topic for a category.
func (t Topics) Inbound(c event.Category) string {
	return fmt.Sprintf("%s.%s.data.get.%s", t.Root, t.City, c.Suffix())
}

// Outbound returns the validated-event topic for a category.
func (t Topics) Outbound(c event.Category) string {
	return fmt.Sprintf("%s.%s.data.post.%s", t.Root, t.City, c.Suffix())
}

// Alert returns the single shared alert topic.
func (t Topics) Alert() string {
	return fmt.Sprintf("%s.%s.alert", t.Root, t.City)
}

// AllInbound returns the five raw-event topics.
func (t Topics) AllInbound() []string {
	cats := event.Categories()
	topics := make([]string, 0, len(cats))
	for _, c := range cats {
		topics = append(topics, t.Inbound(c))
	}
	return topics
}

// All returns every topic the pipeline touches, for startup creation.
func (t Topics) All() []string {
	var topics []string
	for _, c := range event.Categories() {
		topics = append(topics, t.Inbound(c), t.Outbound(c))
	}
	return append(topics, t.Alert())
}

// CategoryForInbound maps a consumed topic back to its category.
func (t Topics) CategoryForInbound(topic string) (event.Category, bool) {
	for _, c := range event.Categories() {
		if t.Inbound(c) == topic {
			return c, true
		}
	}
	return "", false
}
