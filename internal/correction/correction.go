// Package correction runs the guided retry dialog over the words a
// student missed: each word is spoken aloud, the student repeats it, and
// a strict match decides whether the miss is considered corrected. A
// correct first repetition must be confirmed by a second one.
package correction

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"readaloud/internal/audio"
	"readaloud/internal/match"
	"readaloud/internal/models"
	"readaloud/internal/speech"
)

const (
	defaultListenTimeout = 6 * time.Second
	defaultMaxAttempts   = 2
)

// ErrNoWords is returned when a dialog is started with nothing to correct.
var ErrNoWords = errors.New("no words to correct")

// ErrActive is returned when Start is called on a running dialog.
var ErrActive = errors.New("a correction dialog is already active")

// Recognizer is the single-utterance listening capability the dialog
// drives. *speech.Session satisfies it.
type Recognizer interface {
	Attach(events speech.Events, keepListening func() bool)
	Start() error
	Abort()
}

// Config parameterizes the dialog.
type Config struct {
	// ListenTimeout bounds how long the dialog waits for a repetition
	// before counting the silence as a failed attempt.
	ListenTimeout time.Duration
	// MaxAttempts is how many failed attempts a word gets before it is
	// revealed and the dialog moves on.
	MaxAttempts int
}

func (c Config) withDefaults() Config {
	if c.ListenTimeout <= 0 {
		c.ListenTimeout = defaultListenTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	return c
}

// Callbacks deliver dialog progress. All are optional and invoked
// outside the controller's lock.
type Callbacks struct {
	// OnPrompt receives the instruction shown alongside each spoken word.
	OnPrompt func(message string)
	// OnWordDone fires once per word as the dialog moves past it.
	OnWordDone func(word models.Token, corrected bool)
	// OnComplete fires exactly once when every word has been handled.
	OnComplete func(corrected, total int)
}

// Controller walks the missed words one at a time.
type Controller struct {
	mu         sync.Mutex
	cfg        Config
	speaker    audio.Speaker
	recognizer Recognizer
	callbacks  Callbacks

	words     []models.Token
	index     int
	attempts  int
	confirm   bool
	corrected int
	active    bool
	listening bool
	// round invalidates stale timers and late transcripts after the
	// dialog has moved on.
	round        int
	silenceTimer *time.Timer
}

// New creates a controller with its collaborators injected.
func New(speaker audio.Speaker, recognizer Recognizer, cfg Config, callbacks Callbacks) *Controller {
	return &Controller{
		cfg:        cfg.withDefaults(),
		speaker:    speaker,
		recognizer: recognizer,
		callbacks:  callbacks,
	}
}

// Start begins the dialog over the missed words in order.
func (c *Controller) Start(words []models.Token) error {
	if len(words) == 0 {
		return ErrNoWords
	}

	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return ErrActive
	}
	c.active = true
	c.words = words
	c.index = 0
	c.attempts = 0
	c.confirm = false
	c.corrected = 0
	c.mu.Unlock()

	c.recognizer.Attach(speech.Events{
		OnFinalTranscript: c.handleTranscript,
		OnError:           c.handleRecognitionError,
	}, nil)

	c.speakCurrent()
	return nil
}

// Stop abandons the dialog. Words not yet reached are left unhandled and
// no completion fires.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.round++
	c.listening = false
	if c.silenceTimer != nil {
		c.silenceTimer.Stop()
		c.silenceTimer = nil
	}
	c.mu.Unlock()

	c.speaker.Cancel()
	c.recognizer.Abort()
}

// speakCurrent plays the current word and starts listening once the
// prompt has finished. Never called with the lock held: the speaker may
// complete synchronously.
func (c *Controller) speakCurrent() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	word := c.words[c.index]
	round := c.round
	prompt := c.callbacks.OnPrompt
	c.mu.Unlock()

	if prompt != nil {
		prompt(fmt.Sprintf("Listen carefully, then say the word: %s", word.SurfaceText))
	}
	c.speaker.Speak(word.SurfaceText, func() {
		c.listen(round)
	})
}

func (c *Controller) listen(round int) {
	c.mu.Lock()
	if !c.active || round != c.round {
		c.mu.Unlock()
		return
	}
	c.listening = true
	c.silenceTimer = time.AfterFunc(c.cfg.ListenTimeout, func() {
		c.handleSilence(round)
	})
	c.mu.Unlock()

	if err := c.recognizer.Start(); err != nil {
		// Listening failed; like silence, the error spends one attempt
		// and the word is retried until attempts run out.
		c.mu.Lock()
		if c.silenceTimer != nil {
			c.silenceTimer.Stop()
			c.silenceTimer = nil
		}
		c.listening = false
		c.round++
		word := c.words[c.index]
		c.mu.Unlock()
		c.handleFailedAttempt(fmt.Sprintf("I could not hear you. The word is %q, try again.", word.SurfaceText))
	}
}

func (c *Controller) handleTranscript(spoken string) {
	c.mu.Lock()
	if !c.active || !c.listening {
		c.mu.Unlock()
		return
	}
	c.listening = false
	c.round++
	if c.silenceTimer != nil {
		c.silenceTimer.Stop()
		c.silenceTimer = nil
	}
	word := c.words[c.index]
	matched := match.Strict(spoken, word.NormalizedText)
	c.mu.Unlock()

	if matched {
		c.handleCorrect()
	} else {
		c.handleFailedAttempt(fmt.Sprintf("Not quite. The word is %q, try again.", word.SurfaceText))
	}
}

func (c *Controller) handleSilence(round int) {
	c.mu.Lock()
	if !c.active || !c.listening || round != c.round {
		c.mu.Unlock()
		return
	}
	c.listening = false
	c.round++
	c.silenceTimer = nil
	word := c.words[c.index]
	c.mu.Unlock()

	c.recognizer.Abort()
	c.handleFailedAttempt(fmt.Sprintf("I did not hear you. The word is %q, try again.", word.SurfaceText))
}

// handleCorrect advances through the confirmation protocol: the first
// correct repetition asks for one more, the second settles the word.
func (c *Controller) handleCorrect() {
	c.mu.Lock()
	if c.confirm {
		c.confirm = false
		c.corrected++
		c.mu.Unlock()
		c.advance(true)
		return
	}
	c.confirm = true
	round := c.round
	prompt := c.callbacks.OnPrompt
	c.mu.Unlock()

	if prompt != nil {
		prompt("Well done! Say it one more time.")
	}
	c.listen(round)
}

// handleFailedAttempt spends one attempt; a wrong confirmation round
// also lands here, cancelling the pending confirmation.
func (c *Controller) handleFailedAttempt(message string) {
	c.mu.Lock()
	c.confirm = false
	c.attempts++
	exhausted := c.attempts >= c.cfg.MaxAttempts
	prompt := c.callbacks.OnPrompt
	c.mu.Unlock()

	if exhausted {
		c.reveal()
		return
	}
	if prompt != nil {
		prompt(message)
	}
	c.speakCurrent()
}

// reveal gives up on the current word: it is spoken once more and the
// dialog moves on without crediting a correction.
func (c *Controller) reveal() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	word := c.words[c.index]
	prompt := c.callbacks.OnPrompt
	c.mu.Unlock()

	if prompt != nil {
		prompt(fmt.Sprintf("The word was %q. Keep practicing it!", word.SurfaceText))
	}
	c.speaker.Speak(word.SurfaceText, func() {
		c.advance(false)
	})
}

// advance reports the finished word and either moves to the next one or
// completes the dialog.
func (c *Controller) advance(wasCorrected bool) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	word := c.words[c.index]
	c.index++
	c.attempts = 0
	c.confirm = false
	c.round++
	done := c.index >= len(c.words)
	correctedCount := c.corrected
	total := len(c.words)
	if done {
		c.active = false
	}
	onWordDone := c.callbacks.OnWordDone
	onComplete := c.callbacks.OnComplete
	c.mu.Unlock()

	if onWordDone != nil {
		onWordDone(word, wasCorrected)
	}
	if done {
		if onComplete != nil {
			onComplete(correctedCount, total)
		}
		return
	}
	c.speakCurrent()
}

// handleRecognitionError treats a non-restartable error as an unheard
// repetition: the attempt is spent and the word is retried from the
// spoken prompt while attempts remain.
func (c *Controller) handleRecognitionError(kind speech.ErrorKind) {
	if kind.Restartable() {
		// The adapter retries transient errors on its own; the silence
		// timer stays armed as the backstop.
		return
	}
	c.mu.Lock()
	if !c.active || !c.listening {
		c.mu.Unlock()
		return
	}
	c.listening = false
	c.round++
	if c.silenceTimer != nil {
		c.silenceTimer.Stop()
		c.silenceTimer = nil
	}
	word := c.words[c.index]
	c.mu.Unlock()

	c.handleFailedAttempt(fmt.Sprintf("I could not hear you. The word is %q, try again.", word.SurfaceText))
}
