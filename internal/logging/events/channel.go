package events

import "github.com/atomicstack/tweet-popup/internal/logging"

type ChannelTracer struct{}

var Channel = ChannelTracer{}

func (ChannelTracer) Send(transport, name, id string) {
	logging.Trace("channel.send", map[string]interface{}{"transport": transport, "name": name, "id": id})
}

func (ChannelTracer) Receive(transport, name, id string) {
	logging.Trace("channel.receive", map[string]interface{}{"transport": transport, "name": name, "id": id})
}

func (ChannelTracer) Subscribe(name string, handlers int) {
	logging.Trace("channel.subscribe", map[string]interface{}{"name": name, "handlers": handlers})
}

func (ChannelTracer) Unsubscribe(name string, handlers int) {
	logging.Trace("channel.unsubscribe", map[string]interface{}{"name": name, "handlers": handlers})
}

func (ChannelTracer) Unhandled(name string) {
	logging.Trace("channel.unhandled", map[string]interface{}{"name": name})
}

func (ChannelTracer) Dial(transport string, attempt int, err error) {
	payload := map[string]interface{}{"transport": transport, "attempt": attempt}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("channel.dial", payload)
}

func (ChannelTracer) Error(transport string, err error) {
	if err == nil {
		return
	}
	logging.Trace("channel.error", map[string]interface{}{"transport": transport, "error": err.Error()})
}
