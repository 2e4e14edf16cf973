// Package recording re-records one song through the effects engine.
//
// Record runs a fixed sequence: start pw-record, link the engine monitor to
// it, play the song with ffplay, optionally mute the speakers, wait for
// playback, stop the recorder, encode the capture with ffmpeg, then remove
// the capture file. Ctrl+C during playback or encoding stops only that
// stage; the song still proceeds to the following steps. External tool
// failures are logged and never abort the song.
package recording
