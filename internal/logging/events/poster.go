package events

import "github.com/atomicstack/tweet-popup/internal/logging"

type PosterTracer struct{}

var Poster = PosterTracer{}

func (PosterTracer) Start(publisher string, pid int) {
	logging.Trace("poster.start", map[string]interface{}{"publisher": publisher, "pid": pid})
}

func (PosterTracer) Request(id string, textLen int, hasImage bool) {
	logging.Trace("poster.request", map[string]interface{}{"id": id, "textLen": textLen, "hasImage": hasImage})
}

func (PosterTracer) Complete(requestID, postID, handle string) {
	logging.Trace("poster.complete", map[string]interface{}{"request": requestID, "post": postID, "handle": handle})
}

func (PosterTracer) Error(requestID string, err error) {
	payload := map[string]interface{}{"request": requestID}
	if err != nil {
		payload["error"] = err.Error()
	}
	logging.Trace("poster.error", payload)
}

func (PosterTracer) Shortcut() {
	logging.Trace("poster.shortcut", nil)
}

func (PosterTracer) DryRun(textLen int, hasImage bool, handle string) {
	logging.Trace("poster.dryrun", map[string]interface{}{"textLen": textLen, "hasImage": hasImage, "handle": handle})
}

func (PosterTracer) Stop(reason string) {
	logging.Trace("poster.stop", map[string]interface{}{"reason": reason})
}
