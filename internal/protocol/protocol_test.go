package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStatusURL(t *testing.T) {
	tests := []struct {
		host, handle, id string
		want             string
	}{
		{"twitter.com", "alice", "123", "https://twitter.com/alice/status/123"},
		{"", "bob", "9", "https://twitter.com/bob/status/9"},
		{"x.com", "carol", "42", "https://x.com/carol/status/42"},
	}
	for _, tt := range tests {
		if got := StatusURL(tt.host, tt.handle, tt.id); got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestSubmissionRequestEncodesMissingImageAsNull(t *testing.T) {
	data, err := json.Marshal(SubmissionRequest{StatusText: ""})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"imageData":null`) {
		t.Fatalf("expected imageData null, got %s", data)
	}
	if !strings.Contains(string(data), `"statusText":""`) {
		t.Fatalf("expected empty statusText kept, got %s", data)
	}
}

func TestCompleteEventDecodesServiceShape(t *testing.T) {
	var evt PostStatusCompleteEvent
	raw := `{"id_str":"123","user":{"screen_name":"alice","name":"Alice"},"id":123}`
	if err := json.Unmarshal([]byte(raw), &evt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if evt.IDStr != "123" || evt.User.ScreenName != "alice" {
		t.Fatalf("unexpected event %#v", evt)
	}
}
