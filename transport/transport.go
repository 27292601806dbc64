package transport

// MessageHandler is invoked with the topic and raw payload of an inbound
// message.
type MessageHandler func(topic string, payload []byte)

// Transport is one message-bus session. Every robot owns its own session;
// sessions are never shared across robots. Publish failures are reported to
// the caller, which logs and continues — the session stays usable and later
// publishes are attempted again.
type Transport interface {
	Connect() error
	Subscribe(topic string, handler MessageHandler) error
	Publish(topic string, payload []byte) error
	Disconnect()
}
