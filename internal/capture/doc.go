// Package capture gathers the inputs of one poll cycle: the caption text on
// screen at the playback position and, optionally, a still JPEG frame.
//
// Frames come from ffmpeg seeking into the attached video file. Captions come
// from an SRT file, from lines pushed into a CaptionBuffer over the API, or from
// an injected Transcriber. Readers return at most a few recent segments joined
// by spaces.
package capture
