// Package mediatool invokes the external transcoding tool (ffmpeg/ffprobe)
// behind typed operations: web-playable normalization, cropped sub-clip
// extraction, thumbnail rendering, and stream probing.
//
// Subprocess invocation goes through the Runner interface so tests can count
// and stub invocations without real binaries. Failures surface as sentinel
// tagged errors scoped to the single operation that triggered them.
package mediatool
