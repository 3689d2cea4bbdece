package speech

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitUtterance(t *testing.T, u Utterance, within time.Duration) error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- u.Wait() }()
	select {
	case err := <-errc:
		return err
	case <-time.After(within):
		t.Fatal("Wait() did not return")
		return nil
	}
}

func TestSilent_Voices(t *testing.T) {
	t.Parallel()

	voices, err := NewSilent(0).Voices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(voices) != 2 || voices[0].Culture != "es-ES" || voices[1].Culture != "en-US" {
		t.Errorf("Voices() = %+v, want Spanish and English", voices)
	}
}

func TestSilent_UtterCompletes(t *testing.T) {
	t.Parallel()

	s := NewSilent(time.Millisecond)
	u, err := s.Utter(context.Background(), "hello", Voice{}, Prosody{Volume: 100})
	if err != nil {
		t.Fatal(err)
	}
	if err := waitUtterance(t, u, 5*time.Second); err != nil {
		t.Errorf("Wait() = %v, want nil", err)
	}
}

func TestSilent_Cancel(t *testing.T) {
	t.Parallel()

	s := NewSilent(time.Second)
	u, err := s.Utter(context.Background(), "a long segment", Voice{}, Prosody{})
	if err != nil {
		t.Fatal(err)
	}
	u.Cancel()
	if err := waitUtterance(t, u, time.Second); !errors.Is(err, ErrCancelled) {
		t.Errorf("Wait() = %v, want ErrCancelled", err)
	}
}

func TestSilent_ContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	u, err := NewSilent(time.Second).Utter(ctx, "a long segment", Voice{}, Prosody{})
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	if err := waitUtterance(t, u, time.Second); !errors.Is(err, ErrCancelled) {
		t.Errorf("Wait() = %v, want ErrCancelled", err)
	}
}

func TestSilent_PauseStopsTheClock(t *testing.T) {
	t.Parallel()

	u, err := NewSilent(10*time.Millisecond).Utter(context.Background(), "abcde", Voice{}, Prosody{})
	if err != nil {
		t.Fatal(err)
	}
	if err := u.Pause(); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- u.Wait() }()
	select {
	case err := <-done:
		t.Fatalf("Wait() returned %v while paused", err)
	case <-time.After(150 * time.Millisecond):
	}

	if err := u.Resume(); err != nil {
		t.Fatal(err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Wait() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Wait() did not return after Resume")
	}
}

func TestProsody_SpeedFactor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rate int
		want float64
	}{
		{0, 1},
		{10, 3},
		{-10, 1.0 / 3},
		{50, 3},
	}
	for _, tt := range tests {
		got := Prosody{Rate: tt.rate}.SpeedFactor()
		if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("SpeedFactor(rate=%d) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}

func TestProsody_Clamp(t *testing.T) {
	t.Parallel()

	got := Prosody{Rate: -99, Volume: 300}.Clamp()
	if got != (Prosody{Rate: MinRate, Volume: MaxVolume}) {
		t.Errorf("Clamp() = %+v", got)
	}
	if g := (Prosody{Volume: 50}).Gain(); g != 0.5 {
		t.Errorf("Gain() = %v, want 0.5", g)
	}
}
