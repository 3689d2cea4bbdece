// Package speech drives text-to-speech backends for narration.
//
// Engine splits the narration text into sentence segments and speaks them
// one after another through a Backend, reporting the rune offset of each
// segment as it starts and a single completion once the text is done.
// Backends only know how to voice one short segment:
//
//	Engine (segments, pause gate, cancel)
//	    │
//	    └── Backend
//	          ├── Espeak   - espeak-ng child process, SIGSTOP/SIGCONT pause
//	          ├── Google   - translate_tts MP3, played by internal/audio
//	          ├── Yandex   - SpeechKit v3 over gRPC, played by internal/audio
//	          └── Silent   - timed pacing without audio
package speech
