package eventbus

// Default is the process wide event bus, used when nothing else was configured
var Default EventBus = New()

// NopBus drops every event
var NopBus EventBus = nopBus{}

// Publish on the default bus
func Publish(topic string, args interface{}) error {
	return Default.Publish(topic, args)
}

// Instrument on the default bus
func Instrument(topic string, args interface{}, body func() error) error {
	return Default.Instrument(topic, args, body)
}

// Subscribe to a topic on the default bus
func Subscribe(topic string, handler EventHandler) *Subscription {
	return Default.Subscribe(topic, handler)
}

// Unsubscribe from the default bus
func Unsubscribe(sub *Subscription) {
	Default.Unsubscribe(sub)
}

// ListenersFor on the default bus
func ListenersFor(topics ...string) map[string][]EventHandler {
	return Default.ListenersFor(topics...)
}

type nopBus struct{}

func (nopBus) Publish(string, interface{}) error { return nil }

func (nopBus) Instrument(_ string, _ interface{}, body func() error) error {
	if body == nil {
		return nil
	}
	return body()
}

func (nopBus) Subscribe(topic string, handler EventHandler) *Subscription {
	return &Subscription{topic: topic, handler: handler}
}

func (nopBus) Unsubscribe(*Subscription) {}

func (nopBus) ListenersFor(...string) map[string][]EventHandler {
	return map[string][]EventHandler{}
}

func (nopBus) Len() int { return 0 }
