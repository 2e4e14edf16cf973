// Command eerecord re-records audio files through Easy Effects.
//
// With a song path it records that one file; without one it records every
// file under the current directory whose name ends in one of the input
// extensions. Encoded files land in ./output.
package main
