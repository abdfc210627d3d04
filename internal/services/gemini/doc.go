// Package gemini talks to the Google Gemini generateContent API to check the
// claims in a caption sample, optionally with a video frame attached.
//
// The client makes exactly one attempt per call. An optional requests-per-minute
// budget fails fast with factcheck.ErrRateLimited instead of queueing. Model text
// that cannot be decoded into claims is returned as a fallback result carrying
// the raw text rather than as an error.
package gemini
