// Package playback models the video being watched: which file and caption
// track are attached, whether it is playing, and where the playhead is.
//
// A Session replaces the browser's video element. Play, Pause, Seek and Detach
// update its clock and publish an Event on a buffered channel that the poll
// loop consumes.
package playback
