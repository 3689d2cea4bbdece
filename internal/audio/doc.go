// Package audio decodes MP3 speech and plays it through the system audio device.
//
// oto allows a single context per process, so all playback shares one
// 16-bit stereo context at SampleRate. Clips at other rates are resampled.
package audio
