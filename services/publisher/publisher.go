// Package publisher fans actionable decisions out to redis streams so
// downstream consumers (dashboards, purchase tooling) can react to alerts
// without sitting behind the webhook.
package publisher

// Publisher represents a service for publishing alert messages
type Publisher interface {
	// Publish publishes a message to a stream
	Publish(key string, message []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
