// Package mdnarrate shows Markdown documents and reads them aloud, scrolling
// the page along with the narration.
//
// # Quick Start
//
// Build the three collaborators, then hand them to a Controller:
//
//	conv, err := mdnarrate.NewDocumentConverter(mdnarrate.WithStyle("dark"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	engine, err := mdnarrate.NewEngine(ctx, mdnarrate.EngineConfig{Name: "espeak"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	narrator := mdnarrate.NewNarrator(engine)
//	defer narrator.Close()
//
//	surface := mdnarrate.NewBrowserSurface(mdnarrate.BrowserConfig{})
//	defer surface.Close()
//
//	ctrl, err := mdnarrate.NewController(conv, narrator, surface)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctrl.Close()
//
//	if _, err := ctrl.LoadFile(ctx, "README.md"); err != nil {
//	    log.Print(err) // the surface shows an error page
//	}
//	flags, _ := ctrl.Start()
//
// # Narration Loop
//
// The Controller owns all state on a single goroutine. Engine callbacks are
// turned into NarrationEvent values by the Narrator and consumed by that
// goroutine, which stores the progress percentage and asks the Surface to
// scroll to the same fraction of the page:
//
//	engine ──callback──► Narrator ──Events()──► Controller loop ──ScrollTo──► Surface
//
// Every transition returns the recomputed Flags (CanStart, CanPause,
// CanResume, CanStop). Commands whose flag is false are no-ops.
//
// # Speech Engines
//
// NewEngine selects a backend by name:
//
//   - "espeak": espeak-ng child process per sentence, no network
//   - "google": Google translate TTS, MP3 played on the local audio device
//   - "yandex": Yandex SpeechKit over gRPC, needs an API key and folder id
//   - "silent": no audio, paced by estimated speaking time
//
// # Surfaces
//
// BrowserSurface drives a Chromium window with go-rod. WebSurface serves the
// page over HTTP with a remote control bar and pushes scroll and state
// updates over a WebSocket. NopSurface discards everything.
//
// # Custom Assets
//
// Override built-in themes and templates with WithAssetPath:
//
//	assets/
//	├── styles/
//	│   └── custom.css
//	└── templates/
//	    ├── page.html
//	    └── remote.html
package mdnarrate
