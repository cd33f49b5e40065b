package events

import "github.com/atomicstack/tweet-popup/internal/logging"

type ComposeTracer struct{}

type NotifyTracer struct{}

var (
	Compose = ComposeTracer{}
	Notify  = NotifyTracer{}
)

func (ComposeTracer) Activate(events []string) {
	logging.Trace("compose.activate", map[string]interface{}{"events": events})
}

func (ComposeTracer) Deactivate(count int) {
	logging.Trace("compose.deactivate", map[string]interface{}{"subscriptions": count})
}

func (ComposeTracer) Submit(source string, textLen int, hasImage bool) {
	logging.Trace("compose.submit", map[string]interface{}{
		"source":   source,
		"textLen":  textLen,
		"hasImage": hasImage,
	})
}

func (ComposeTracer) ImageAttached(name string, size int64) {
	logging.Trace("compose.image.attach", map[string]interface{}{"name": name, "size": size})
}

func (ComposeTracer) ImageRemoved(hadImage bool) {
	logging.Trace("compose.image.remove", map[string]interface{}{"hadImage": hadImage})
}

func (ComposeTracer) PickCancelled() {
	logging.Trace("compose.image.cancel", nil)
}

func (NotifyTracer) Dispatch(title string, silent, activatable bool) {
	logging.Trace("notify.dispatch", map[string]interface{}{
		"title":       title,
		"silent":      silent,
		"activatable": activatable,
	})
}

func (NotifyTracer) Activate(title string, ran bool) {
	logging.Trace("notify.activate", map[string]interface{}{"title": title, "ran": ran})
}

func (NotifyTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("notify.error", map[string]interface{}{"error": err.Error()})
}
