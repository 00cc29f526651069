// Package toolargs builds command lines for ffmpeg and yt-dlp operations.
//
// Each operation has a spec struct whose Build method validates inputs,
// derives the output path from the input name and operation suffix, and
// returns the full argument vector. User-facing codec and resolution names
// are mapped to the encoder names ffmpeg expects; unknown values fall back
// to safe defaults rather than erroring, matching how the tools themselves
// treat unknown options.
package toolargs
