// Package procexec starts and supervises the external tools the recorder
// drives: the effects engine, pw-record, ffplay, ffmpeg, and short query
// commands such as pw-link and ps.
//
// Long-running children are started in their own process group so that a
// terminal Ctrl+C reaches eerecord first; the Interrupter then decides whether
// the signal stops the stage currently being waited on or aborts the run.
// Process.Wait is the only blocking call and is always interruptible.
package procexec
