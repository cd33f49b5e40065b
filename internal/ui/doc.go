// Package ui contains the Bubble Tea program that powers the compose popup.
// The Model type focuses on message orchestration, while dedicated helpers own
// key routing, text input, rendering, and background events.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages. Each tea.Msg is
//     routed through a typed handler registry so it is handled by a focused
//     function (key presses, window resizes, channel events, image loads).
//     Keys the compose screen does not bind fall through to the textarea.
//   - Key routing (internal/ui/navigation.go) switches on the active Mode.
//     In ModeImagePicker the filter helpers (internal/ui/input.go) edit the
//     picker's list, which lives in internal/ui/state.Level.
//
// State ownership:
//   - Draft text and the attached image live in the draft.Store. The model
//     writes reweighed text into the store as the user types and listens for
//     changes so a cleared draft empties the editor on the next update.
//   - The compose controller owns submission and the picker; the model only
//     calls it and renders the outcome.
//
// Background interactions:
//   - waitForChannelEvent reads the poster channel; handleChannelEventMsg
//     dispatches each envelope on the UI loop, so controller handlers never
//     run concurrently with key handling.
//   - Image loading runs through the internal/ui/command bus; the resulting
//     imagepicker.LoadedMsg is resolved back on the UI loop.
//   - Notifications raised by the controller show on the info line; ctrl+n
//     runs the latest one's action.
package ui
