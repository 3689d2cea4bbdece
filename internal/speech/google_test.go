package speech

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alnah/go-mdnarrate/internal/audio"
)

func TestGoogle_FetchSendsQuery(t *testing.T) {
	t.Parallel()

	reqs := make(chan *http.Request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs <- r.Clone(context.Background())
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	g := NewGoogle(WithGoogleBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	data, err := g.fetch(context.Background(), "¿Qué tal?", "es", 1)
	if err != nil {
		t.Fatalf("fetch() error = %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Errorf("fetch() = %q", data)
	}

	r := <-reqs
	got := r.URL.Query()
	want := map[string]string{
		"ie": "UTF-8", "client": "tw-ob", "q": "¿Qué tal?", "tl": "es",
		"total": "1", "idx": "0", "textlen": "9", "ttsspeed": "1.00",
	}
	for k, v := range want {
		if got.Get(k) != v {
			t.Errorf("query %s = %q, want %q", k, got.Get(k), v)
		}
	}
	if agent := r.Header.Get("User-Agent"); agent != "Mozilla/5.0" {
		t.Errorf("User-Agent = %q", agent)
	}
}

func TestGoogle_UtterReportsHTTPStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGoogle(WithGoogleBaseURL(srv.URL))
	_, err := g.Utter(context.Background(), "hola", Voice{ID: "es"}, Prosody{Volume: 100})
	if err == nil {
		t.Fatal("Utter() error = nil, want status error")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("Utter() error = %v, want status and body", err)
	}
}

func TestGoogle_UtterRejectsUndecodableAudio(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(nil)
	}))
	defer srv.Close()

	played := false
	g := NewGoogle(WithGoogleBaseURL(srv.URL))
	g.play = func(*audio.Clip, float64) (Utterance, error) {
		played = true
		return nil, nil
	}
	if _, err := g.Utter(context.Background(), "hola", Voice{}, Prosody{}); err == nil {
		t.Fatal("Utter() error = nil, want decode error")
	}
	if played {
		t.Error("empty response reached the player")
	}
}

func TestGoogle_Voices(t *testing.T) {
	t.Parallel()

	voices, err := NewGoogle().Voices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(voices) == 0 || voices[0].Culture != "es-ES" {
		t.Errorf("Voices() = %+v, want Spanish first", voices)
	}
}

func TestGoogleSpeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate int
		want float64
	}{
		{0, 1},
		{5, 1},
		{10, 1},
		{-5, 1 / math.Sqrt(3)},
		{-10, 1.0 / 3},
	}
	for _, tt := range tests {
		if got := googleSpeed(Prosody{Rate: tt.rate}); got < tt.want-1e-9 || got > tt.want+1e-9 {
			t.Errorf("googleSpeed(%d) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}
