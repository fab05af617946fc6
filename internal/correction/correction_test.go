package correction

import (
	"errors"
	"sync"
	"testing"
	"time"

	"readaloud/internal/models"
	"readaloud/internal/speech"
)

// fakeSpeaker completes every utterance immediately and records what was
// spoken.
type fakeSpeaker struct {
	mu     sync.Mutex
	spoken []string
}

func (s *fakeSpeaker) Speak(text string, onDone func()) {
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	s.mu.Unlock()
	if onDone != nil {
		onDone()
	}
}

func (s *fakeSpeaker) Cancel() {}

func (s *fakeSpeaker) spokenWords() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

// fakeListener is the single-utterance recognizer; the test feeds it
// transcripts.
type fakeListener struct {
	mu       sync.Mutex
	events   speech.Events
	starts   int
	aborts   int
	startErr error
}

func (l *fakeListener) Attach(events speech.Events, keepListening func() bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = events
}

func (l *fakeListener) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.starts++
	return l.startErr
}

func (l *fakeListener) Abort() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.aborts++
}

func (l *fakeListener) speak(text string) {
	l.mu.Lock()
	onFinal := l.events.OnFinalTranscript
	l.mu.Unlock()
	if onFinal != nil {
		onFinal(text)
	}
}

func (l *fakeListener) fail(kind speech.ErrorKind) {
	l.mu.Lock()
	onError := l.events.OnError
	l.mu.Unlock()
	if onError != nil {
		onError(kind)
	}
}

type dialogRecorder struct {
	mu      sync.Mutex
	prompts []string
	done    []struct {
		word      string
		corrected bool
	}
	complete chan [2]int
}

func newDialogRecorder() *dialogRecorder {
	return &dialogRecorder{complete: make(chan [2]int, 1)}
}

func (r *dialogRecorder) callbacks() Callbacks {
	return Callbacks{
		OnPrompt: func(message string) {
			r.mu.Lock()
			r.prompts = append(r.prompts, message)
			r.mu.Unlock()
		},
		OnWordDone: func(word models.Token, corrected bool) {
			r.mu.Lock()
			r.done = append(r.done, struct {
				word      string
				corrected bool
			}{word.SurfaceText, corrected})
			r.mu.Unlock()
		},
		OnComplete: func(corrected, total int) {
			r.complete <- [2]int{corrected, total}
		},
	}
}

func (r *dialogRecorder) waitComplete(t *testing.T) (corrected, total int) {
	t.Helper()
	select {
	case result := <-r.complete:
		return result[0], result[1]
	case <-time.After(2 * time.Second):
		t.Fatal("dialog did not complete")
		return 0, 0
	}
}

func (r *dialogRecorder) wordOutcomes() []struct {
	word      string
	corrected bool
} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]struct {
		word      string
		corrected bool
	}(nil), r.done...)
}

func token(word string) models.Token {
	return models.Token{SurfaceText: word, NormalizedText: word}
}

func newDialog(t *testing.T, cfg Config, words ...string) (*Controller, *fakeSpeaker, *fakeListener, *dialogRecorder) {
	t.Helper()
	speaker := &fakeSpeaker{}
	listener := &fakeListener{}
	rec := newDialogRecorder()
	controller := New(speaker, listener, cfg, rec.callbacks())

	tokens := make([]models.Token, len(words))
	for i, w := range words {
		tokens[i] = token(w)
	}
	if err := controller.Start(tokens); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	return controller, speaker, listener, rec
}

func TestStartRequiresWords(t *testing.T) {
	controller := New(&fakeSpeaker{}, &fakeListener{}, Config{}, Callbacks{})
	if err := controller.Start(nil); !errors.Is(err, ErrNoWords) {
		t.Errorf("Start(nil) error = %v, want ErrNoWords", err)
	}
}

func TestCorrectRepetitionNeedsConfirmation(t *testing.T) {
	_, speaker, listener, rec := newDialog(t, Config{}, "cricket")

	// First correct repetition asks for a confirmation round instead of
	// settling the word.
	listener.speak("cricket")
	select {
	case result := <-rec.complete:
		t.Fatalf("dialog completed after a single repetition: %v", result)
	default:
	}

	listener.speak("cricket")
	corrected, total := rec.waitComplete(t)
	if corrected != 1 || total != 1 {
		t.Errorf("complete = (%d, %d), want (1, 1)", corrected, total)
	}

	outcomes := rec.wordOutcomes()
	if len(outcomes) != 1 || !outcomes[0].corrected {
		t.Errorf("word outcomes = %v, want cricket corrected", outcomes)
	}
	if spoken := speaker.spokenWords(); len(spoken) != 1 || spoken[0] != "cricket" {
		t.Errorf("spoken prompts = %v, want one cricket prompt", spoken)
	}
}

func TestNearMissWithinEditDistancePasses(t *testing.T) {
	_, _, listener, rec := newDialog(t, Config{}, "cricket")

	listener.speak("crickets")
	listener.speak("cricket")

	corrected, _ := rec.waitComplete(t)
	if corrected != 1 {
		t.Errorf("corrected = %d, want 1 for a near-miss repetition", corrected)
	}
}

func TestWrongConfirmationCountsAsFailedAttempt(t *testing.T) {
	_, _, listener, rec := newDialog(t, Config{}, "cricket")

	listener.speak("cricket") // correct, enters confirmation
	listener.speak("banana")  // wrong confirmation: attempt spent, confirmation reset
	listener.speak("cricket") // correct again, enters confirmation
	listener.speak("cricket") // confirmed

	corrected, total := rec.waitComplete(t)
	if corrected != 1 || total != 1 {
		t.Errorf("complete = (%d, %d), want (1, 1)", corrected, total)
	}
}

func TestAttemptsExhaustedRevealsAndAdvances(t *testing.T) {
	_, speaker, listener, rec := newDialog(t, Config{}, "cricket")

	listener.speak("banana")
	listener.speak("pudding")

	corrected, total := rec.waitComplete(t)
	if corrected != 0 || total != 1 {
		t.Errorf("complete = (%d, %d), want (0, 1)", corrected, total)
	}

	outcomes := rec.wordOutcomes()
	if len(outcomes) != 1 || outcomes[0].corrected {
		t.Errorf("word outcomes = %v, want cricket uncorrected", outcomes)
	}
	// Initial prompt, one retry prompt, and the reveal.
	if spoken := speaker.spokenWords(); len(spoken) != 3 {
		t.Errorf("spoken prompts = %v, want 3", spoken)
	}
}

func TestSilenceSpendsAnAttempt(t *testing.T) {
	_, _, listener, rec := newDialog(t, Config{ListenTimeout: 20 * time.Millisecond}, "cricket")

	// Say nothing at all: two silent windows exhaust the attempts and
	// the word is revealed.
	corrected, total := rec.waitComplete(t)
	if corrected != 0 || total != 1 {
		t.Errorf("complete = (%d, %d), want (0, 1)", corrected, total)
	}

	listener.mu.Lock()
	aborts := listener.aborts
	listener.mu.Unlock()
	if aborts != 2 {
		t.Errorf("listener aborts = %d, want 2 (one per silent window)", aborts)
	}
}

func TestWordsHandledInOrder(t *testing.T) {
	_, _, listener, rec := newDialog(t, Config{}, "cricket", "ground")

	listener.speak("cricket")
	listener.speak("cricket")
	listener.speak("banana")
	listener.speak("banana")

	corrected, total := rec.waitComplete(t)
	if corrected != 1 || total != 2 {
		t.Errorf("complete = (%d, %d), want (1, 2)", corrected, total)
	}

	outcomes := rec.wordOutcomes()
	if len(outcomes) != 2 {
		t.Fatalf("word outcomes = %v, want 2", outcomes)
	}
	if outcomes[0].word != "cricket" || !outcomes[0].corrected {
		t.Errorf("first outcome = %+v, want cricket corrected", outcomes[0])
	}
	if outcomes[1].word != "ground" || outcomes[1].corrected {
		t.Errorf("second outcome = %+v, want ground uncorrected", outcomes[1])
	}
}

func TestStopAbandonsDialog(t *testing.T) {
	controller, _, listener, rec := newDialog(t, Config{}, "cricket", "ground")

	controller.Stop()
	listener.speak("cricket")

	select {
	case result := <-rec.complete:
		t.Fatalf("dialog completed after Stop: %v", result)
	case <-time.After(50 * time.Millisecond):
	}
	if len(rec.wordOutcomes()) != 0 {
		t.Errorf("word outcomes after Stop = %v, want none", rec.wordOutcomes())
	}
}

func TestRecognitionErrorSpendsAnAttempt(t *testing.T) {
	_, speaker, listener, rec := newDialog(t, Config{}, "cricket")

	listener.fail(speech.ErrorNoSpeech)
	if outcomes := rec.wordOutcomes(); len(outcomes) != 0 {
		t.Fatalf("word outcomes after one error = %v, want none", outcomes)
	}

	// The retry is live: a correct repetition plus confirmation still
	// settles the word.
	listener.speak("cricket")
	listener.speak("cricket")

	corrected, total := rec.waitComplete(t)
	if corrected != 1 || total != 1 {
		t.Errorf("complete = (%d, %d), want (1, 1)", corrected, total)
	}
	// Initial prompt and the retry after the error.
	if spoken := speaker.spokenWords(); len(spoken) != 2 {
		t.Errorf("spoken prompts = %v, want 2", spoken)
	}
}

func TestRepeatedRecognitionErrorsExhaustAttempts(t *testing.T) {
	_, _, listener, rec := newDialog(t, Config{}, "cricket")

	listener.fail(speech.ErrorNotAllowed)
	listener.fail(speech.ErrorNotAllowed)

	corrected, total := rec.waitComplete(t)
	if corrected != 0 || total != 1 {
		t.Errorf("complete = (%d, %d), want (0, 1)", corrected, total)
	}
	outcomes := rec.wordOutcomes()
	if len(outcomes) != 1 || outcomes[0].corrected {
		t.Errorf("word outcomes = %v, want cricket uncorrected", outcomes)
	}
}

func TestTransientRecognitionErrorKeepsListening(t *testing.T) {
	_, speaker, listener, rec := newDialog(t, Config{}, "cricket")

	listener.fail(speech.ErrorNetwork)

	listener.speak("cricket")
	listener.speak("cricket")

	corrected, _ := rec.waitComplete(t)
	if corrected != 1 {
		t.Errorf("corrected = %d, want 1 after a transient error", corrected)
	}
	if spoken := speaker.spokenWords(); len(spoken) != 1 {
		t.Errorf("spoken prompts = %v, want just the initial prompt", spoken)
	}
}

func TestListeningFailureSpendsAttemptsThenReveals(t *testing.T) {
	speaker := &fakeSpeaker{}
	listener := &fakeListener{startErr: errors.New("no microphone")}
	rec := newDialogRecorder()
	controller := New(speaker, listener, Config{}, rec.callbacks())

	if err := controller.Start([]models.Token{token("cricket")}); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	corrected, total := rec.waitComplete(t)
	if corrected != 0 || total != 1 {
		t.Errorf("complete = (%d, %d), want (0, 1)", corrected, total)
	}
	// Two failed listening attempts, then the reveal.
	if spoken := speaker.spokenWords(); len(spoken) != 3 {
		t.Errorf("spoken prompts = %v, want 3", spoken)
	}
}
