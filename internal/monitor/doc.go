// Package monitor drives the fact-check poll loop for an attached playback
// session.
//
// A Loop is Idle until a play event arrives. Activation starts a ticker and
// fires one sample immediately; every tick runs a cycle on its own goroutine
// that reads captions, optionally grabs a frame, asks the verifier and hands
// the result to the recorder and renderer. Each activation carries a
// generation number so responses that outlive a pause, seek restart or detach
// are discarded instead of rendered.
package monitor
