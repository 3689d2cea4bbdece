package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/alnah/go-mdnarrate/internal/process"
)

// Words per minute at rate 0, and the range espeak-ng accepts.
const (
	espeakBaseWPM = 175
	espeakMinWPM  = 80
	espeakMaxWPM  = 450
)

// espeakBinaries are tried in order when no binary is configured.
var espeakBinaries = []string{"espeak-ng", "espeak"}

// Espeak speaks segments by running espeak-ng, one process per segment.
type Espeak struct {
	bin string
}

// NewEspeak locates the espeak binary. An empty bin searches PATH for
// espeak-ng, then espeak. Returns ErrUnavailable when none is found.
func NewEspeak(bin string) (*Espeak, error) {
	candidates := espeakBinaries
	if bin != "" {
		candidates = []string{bin}
	}
	for _, c := range candidates {
		if path, err := exec.LookPath(c); err == nil {
			return &Espeak{bin: path}, nil
		}
	}
	return nil, fmt.Errorf("%w: espeak: none of %s found", ErrUnavailable, strings.Join(candidates, ", "))
}

// Name implements Backend.
func (e *Espeak) Name() string { return "espeak" }

// Binary returns the resolved binary path.
func (e *Espeak) Binary() string { return e.bin }

// Voices implements Backend by parsing "espeak-ng --voices".
func (e *Espeak) Voices(ctx context.Context) ([]Voice, error) {
	out, err := exec.CommandContext(ctx, e.bin, "--voices").Output() // #nosec G204 -- configured binary
	if err != nil {
		return nil, fmt.Errorf("%w: espeak --voices: %v", ErrUnavailable, err)
	}
	voices := parseEspeakVoices(out)
	if len(voices) == 0 {
		return nil, fmt.Errorf("%w: espeak: %w", ErrUnavailable, errNoVoices)
	}
	return voices, nil
}

// parseEspeakVoices reads the table printed by --voices:
//
//	Pty Language       Age/Gender VoiceName          File        Other Languages
//	 5  es              --/M      Spanish_(Spain)    roa/es
func parseEspeakVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 5 || fields[0] == "Pty" {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}
		age, gender := parseAgeGender(fields[2])
		voices = append(voices, Voice{
			ID:      fields[4],
			Name:    strings.ReplaceAll(fields[3], "_", " "),
			Culture: normalizeCulture(fields[1]),
			Gender:  gender,
			Age:     age,
		})
	}
	return voices
}

// parseAgeGender splits "--/M" or "40/F".
func parseAgeGender(s string) (int, string) {
	agePart, genderPart, _ := strings.Cut(s, "/")
	age, _ := strconv.Atoi(agePart)
	switch strings.ToUpper(genderPart) {
	case "M":
		return age, "Male"
	case "F":
		return age, "Female"
	}
	return age, ""
}

// normalizeCulture turns "en-gb" into "en-GB"; scripts and numeric regions stay as they are.
func normalizeCulture(lang string) string {
	parts := strings.Split(lang, "-")
	parts[0] = strings.ToLower(parts[0])
	for i := 1; i < len(parts); i++ {
		if len(parts[i]) == 2 {
			parts[i] = strings.ToUpper(parts[i])
		}
	}
	return strings.Join(parts, "-")
}

// espeakArgs builds the command line for one segment read from stdin.
func espeakArgs(voice Voice, p Prosody) []string {
	wpm := int(math.Round(espeakBaseWPM * p.SpeedFactor()))
	wpm = clampInt(wpm, espeakMinWPM, espeakMaxWPM)
	args := []string{
		"-s", strconv.Itoa(wpm),
		"-a", strconv.Itoa(clampInt(p.Volume, MinVolume, MaxVolume)),
	}
	if voice.ID != "" {
		args = append(args, "-v", voice.ID)
	}
	return append(args, "--stdin")
}

// Utter implements Backend.
func (e *Espeak) Utter(ctx context.Context, text string, voice Voice, prosody Prosody) (Utterance, error) {
	cmd := exec.Command(e.bin, espeakArgs(voice, prosody)...) // #nosec G204 -- configured binary, fixed flags
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	process.Isolate(cmd)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", e.bin, err)
	}

	u := &processUtterance{cmd: cmd, stderr: &stderr, done: make(chan struct{})}
	go u.wait()
	u.stop = context.AfterFunc(ctx, u.Cancel)
	return u, nil
}

// processUtterance is one espeak process.
type processUtterance struct {
	cmd    *exec.Cmd
	stderr *bytes.Buffer
	stop   func() bool

	mu        sync.Mutex
	cancelled bool
	paused    bool
	done      chan struct{}
	err       error
}

func (u *processUtterance) wait() {
	err := u.cmd.Wait()
	u.mu.Lock()
	if u.cancelled {
		u.err = ErrCancelled
	} else if err != nil {
		msg := strings.TrimSpace(u.stderr.String())
		if msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		u.err = err
	}
	u.mu.Unlock()
	close(u.done)
}

// Wait implements Utterance.
func (u *processUtterance) Wait() error {
	<-u.done
	if u.stop != nil {
		u.stop()
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.err
}

// Pause implements Utterance with SIGSTOP.
func (u *processUtterance) Pause() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.cancelled || u.paused || u.exited() {
		return nil
	}
	if err := process.Suspend(u.cmd.Process.Pid); err != nil {
		return err
	}
	u.paused = true
	return nil
}

// Resume implements Utterance with SIGCONT.
func (u *processUtterance) Resume() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.paused {
		return nil
	}
	u.paused = false
	if u.exited() {
		return nil
	}
	return process.Continue(u.cmd.Process.Pid)
}

// Cancel implements Utterance by killing the process group.
func (u *processUtterance) Cancel() {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.cancelled || u.exited() {
		return
	}
	u.cancelled = true
	process.KillProcessGroup(u.cmd.Process.Pid)
}

// exited reports whether Wait has returned. Caller holds mu.
func (u *processUtterance) exited() bool {
	select {
	case <-u.done:
		return true
	default:
		return false
	}
}

var (
	_ Backend   = (*Espeak)(nil)
	_ Utterance = (*processUtterance)(nil)
)
