// Package engine drives a read-aloud practice session: it presents
// tokens, races recognition results against per-word timeouts, grades
// transcripts, and reports misses and the final score. One engine runs
// one session at a time; all transitions happen on callback dispatch
// (recognition events, timer firings, user start/stop).
package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"readaloud/internal/match"
	"readaloud/internal/models"
	"readaloud/internal/speech"
)

// State is the practice state machine's current phase.
type State int

const (
	StateIdle State = iota
	StateListening
	StateValidating
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateListening:
		return "listening"
	case StateValidating:
		return "validating"
	case StateCompleted:
		return "completed"
	default:
		return "idle"
	}
}

const (
	defaultWordTimeout          = 5 * time.Second
	defaultStartDelay           = 500 * time.Millisecond
	defaultFullUtteranceDelay   = 300 * time.Millisecond
	sourceTimeout               = "timeout"
	defaultMissSource           = "practice"
	minimumTokensForRecognition = 1
)

// ErrNoTokens is returned when a session is started with nothing to read.
var ErrNoTokens = errors.New("no tokens to practice")

// ErrNotIdle is returned when Start is called on a running session.
var ErrNotIdle = errors.New("a practice session is already active")

// Recognizer is what the engine needs from the recognition session
// adapter. *speech.Session satisfies it.
type Recognizer interface {
	Attach(events speech.Events, keepListening func() bool)
	Start() error
	Stop()
	Abort()
}

// Config parameterizes a session.
type Config struct {
	Mode models.Mode
	// WordTimeout is the per-token listening window in WordByWord mode.
	// FullUtterance mode has no per-token timeout; any session-level
	// limit is the caller's concern.
	WordTimeout time.Duration
	// StartDelay is the grace period after recognition starts during
	// which stray transcripts are rejected.
	StartDelay time.Duration
	// MissSource tags warmup insertions with the activity that produced
	// them (practice, book, daily).
	MissSource string
}

func (c Config) withDefaults() Config {
	if c.WordTimeout <= 0 {
		c.WordTimeout = defaultWordTimeout
	}
	if c.StartDelay <= 0 {
		if c.Mode == models.FullUtterance {
			c.StartDelay = defaultFullUtteranceDelay
		} else {
			c.StartDelay = defaultStartDelay
		}
	}
	if c.MissSource == "" {
		c.MissSource = defaultMissSource
	}
	return c
}

// Callbacks deliver session progress to the caller. All callbacks are
// optional and are invoked outside the engine's lock.
type Callbacks struct {
	// OnFeedback receives user-facing status messages.
	OnFeedback func(message string)
	// OnResult fires when a token's result is written.
	OnResult func(index int, result models.TokenResult)
	// OnMiss fires for every token graded wrong, for warmup insertion.
	// The word is the token's normalized form.
	OnMiss func(word, source string)
	// OnError receives recognition errors; transient kinds recover on
	// their own via the adapter's restart policy. In FullUtterance mode
	// a non-restartable error ends the session with the remaining
	// tokens wrong.
	OnError func(kind speech.ErrorKind)
	// OnComplete fires exactly once when the session finishes.
	OnComplete func(summary models.SessionSummary)
}

// Engine is the practice state machine. Safe for concurrent use; exactly
// one session may be active at a time.
type Engine struct {
	mu          sync.Mutex
	cfg         Config
	callbacks   Callbacks
	recognizer  Recognizer
	session     *models.PracticeSession
	state       State
	canValidate bool
	// fullAccuracy keeps the graded-token accuracy from a full-utterance
	// transcript for the summary.
	fullAccuracy int
	wordTimer    *time.Timer
	graceTimer   *time.Timer
}

// New creates an engine with its collaborators injected. The recognizer
// instance is owned by the engine from here on.
func New(recognizer Recognizer, cfg Config, callbacks Callbacks) *Engine {
	return &Engine{
		cfg:        cfg.withDefaults(),
		callbacks:  callbacks,
		recognizer: recognizer,
		state:      StateIdle,
	}
}

// State returns the machine's current phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Session returns the active session, or nil when idle.
func (e *Engine) Session() *models.PracticeSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// Start begins a practice session over the token sequence. Short tokens
// are auto-marked correct immediately; if nothing remains to grade the
// session completes without listening at all.
func (e *Engine) Start(tokens []models.Token) error {
	if len(tokens) < minimumTokensForRecognition {
		return ErrNoTokens
	}

	e.mu.Lock()
	if e.state != StateIdle {
		e.mu.Unlock()
		return ErrNotIdle
	}

	session := &models.PracticeSession{
		ID:        uuid.New().String(),
		Tokens:    tokens,
		Results:   make([]models.TokenResult, len(tokens)),
		Mode:      e.cfg.Mode,
		StartedAt: time.Now(),
	}
	for i, token := range tokens {
		if token.IsShort() {
			session.Results[i] = models.ResultCorrect
		}
	}
	session.CurrentIndex = nextGradable(session, 0)

	e.session = session
	e.canValidate = false

	if session.IsComplete() {
		// Nothing gradable: the session completes on the spot.
		notify := e.completeLocked()
		e.mu.Unlock()
		notify()
		return nil
	}

	e.state = StateListening
	e.recognizer.Attach(speech.Events{
		OnStart:           e.handleRecognitionStarted,
		OnFinalTranscript: e.handleTranscript,
		OnError:           e.handleRecognitionError,
	}, e.moreExpected)
	e.mu.Unlock()

	if err := e.recognizer.Start(); err != nil {
		e.mu.Lock()
		e.state = StateIdle
		e.session = nil
		e.mu.Unlock()
		return err
	}
	return nil
}

// Stop cancels the session from any non-terminal state: the recognizer
// is aborted, pending timers are cleared, and the machine returns to
// Idle without mutating results further. Idempotent.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.state == StateIdle || e.state == StateCompleted {
		e.mu.Unlock()
		return
	}
	e.state = StateIdle
	e.session = nil
	e.canValidate = false
	e.clearTimersLocked()
	e.mu.Unlock()

	e.recognizer.Abort()
}

// moreExpected tells the recognition adapter whether to keep the stream
// alive across the platform's utterance segmentation.
func (e *Engine) moreExpected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StateListening &&
		e.cfg.Mode == models.WordByWord &&
		e.session != nil && !e.session.IsComplete()
}

func (e *Engine) handleRecognitionStarted() {
	e.mu.Lock()
	if e.state != StateListening {
		e.mu.Unlock()
		return
	}
	if e.canValidate {
		// Restarted mid-session; the word timer is already armed.
		e.mu.Unlock()
		return
	}
	e.graceTimer = time.AfterFunc(e.cfg.StartDelay, e.handleGraceElapsed)
	e.mu.Unlock()
}

func (e *Engine) handleGraceElapsed() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateListening {
		return
	}
	e.canValidate = true
	if e.cfg.Mode == models.WordByWord && !e.session.IsComplete() {
		e.armWordTimerLocked(e.session.CurrentIndex)
	}
}

// armWordTimerLocked arms the per-token timeout. Callers hold e.mu.
func (e *Engine) armWordTimerLocked(index int) {
	if e.wordTimer != nil {
		e.wordTimer.Stop()
	}
	e.wordTimer = time.AfterFunc(e.cfg.WordTimeout, func() {
		e.handleWordTimeout(index)
	})
}

func (e *Engine) handleTranscript(text string) {
	e.mu.Lock()
	if e.state != StateListening || !e.canValidate || e.session.IsComplete() {
		e.mu.Unlock()
		return
	}
	e.state = StateValidating
	if e.wordTimer != nil {
		e.wordTimer.Stop()
		e.wordTimer = nil
	}

	var notify func()
	if e.cfg.Mode == models.FullUtterance {
		notify = e.validateUtteranceLocked(text)
	} else {
		notify = e.validateWordLocked(text)
	}
	e.mu.Unlock()
	notify()
}

// validateUtteranceLocked grades every token from one transcript.
// Callers hold e.mu.
func (e *Engine) validateUtteranceLocked(transcript string) func() {
	session := e.session
	results, accuracy := match.Sentence(transcript, session.Tokens)
	copy(session.Results, results)
	session.CurrentIndex = len(session.Tokens)
	e.fullAccuracy = accuracy

	var pending []func()
	for i, result := range results {
		pending = append(pending, e.resultNotification(i, result)...)
		if result == models.ResultWrong {
			pending = append(pending, e.missNotification(session.Tokens[i], e.cfg.MissSource))
		}
	}
	pending = append(pending, e.completeLocked())
	return sequence(pending)
}

// validateWordLocked grades the current token against one utterance and
// advances. Callers hold e.mu.
func (e *Engine) validateWordLocked(spoken string) func() {
	session := e.session
	index := session.CurrentIndex
	token := session.Tokens[index]

	var pending []func()
	if match.Word(spoken, token.NormalizedText) {
		session.Results[index] = models.ResultCorrect
		pending = append(pending, e.resultNotification(index, models.ResultCorrect)...)
		pending = append(pending, e.feedbackNotification(fmt.Sprintf("Correct! %q", token.SurfaceText)))
	} else {
		session.Results[index] = models.ResultWrong
		pending = append(pending, e.resultNotification(index, models.ResultWrong)...)
		pending = append(pending, e.missNotification(token, e.cfg.MissSource))
		pending = append(pending, e.feedbackNotification(
			fmt.Sprintf("Heard %q, expected %q", spoken, token.SurfaceText)))
	}

	pending = append(pending, e.advanceLocked(index)...)
	return sequence(pending)
}

func (e *Engine) handleWordTimeout(index int) {
	e.mu.Lock()
	if e.state != StateListening || e.session == nil || index != e.session.CurrentIndex {
		// Stale timer: a transcript already graded this token.
		e.mu.Unlock()
		return
	}
	session := e.session
	token := session.Tokens[index]
	session.Results[index] = models.ResultWrong

	pending := []func(){}
	pending = append(pending, e.resultNotification(index, models.ResultWrong)...)
	pending = append(pending, e.missNotification(token, sourceTimeout))
	pending = append(pending, e.feedbackNotification(fmt.Sprintf("Time's up! Expected %q", token.SurfaceText)))
	pending = append(pending, e.advanceLocked(index)...)
	e.mu.Unlock()

	sequence(pending)()
}

// advanceLocked moves past a just-graded token: every short token on the
// way is auto-marked correct, and the session either re-arms for the
// next gradable token or completes. Callers hold e.mu; the returned
// notifications run outside it.
func (e *Engine) advanceLocked(gradedIndex int) []func() {
	session := e.session
	var pending []func()

	next := nextGradable(session, gradedIndex+1)
	for i := gradedIndex + 1; i < next && i < len(session.Tokens); i++ {
		pending = append(pending, e.resultNotification(i, models.ResultCorrect)...)
	}
	session.CurrentIndex = next

	if session.IsComplete() {
		pending = append(pending, e.completeLocked())
		return pending
	}

	e.state = StateListening
	e.armWordTimerLocked(next)
	return pending
}

// completeLocked finalizes the session and returns the completion
// notification. Callers hold e.mu.
func (e *Engine) completeLocked() func() {
	session := e.session
	e.state = StateCompleted
	e.clearTimersLocked()

	correct := session.CorrectCount()
	total := len(session.Tokens)
	accuracy := int(math.Round(float64(correct) / float64(total) * 100))
	if session.Mode == models.FullUtterance {
		accuracy = e.fullAccuracy
	}

	wrong := session.WrongTokens()
	wrongWords := make([]string, len(wrong))
	for i, t := range wrong {
		wrongWords[i] = t.SurfaceText
	}

	summary := models.SessionSummary{
		SessionID:    session.ID,
		Mode:         session.Mode,
		TotalTokens:  total,
		CorrectCount: correct,
		Accuracy:     accuracy,
		WrongWords:   wrongWords,
		Duration:     time.Since(session.StartedAt),
	}

	recognizer := e.recognizer
	onFeedback := e.callbacks.OnFeedback
	onComplete := e.callbacks.OnComplete
	return func() {
		recognizer.Stop()
		if onFeedback != nil {
			onFeedback(fmt.Sprintf("Final score: %d/%d", correct, total))
		}
		if onComplete != nil {
			onComplete(summary)
		}
	}
}

func (e *Engine) handleRecognitionError(kind speech.ErrorKind) {
	e.mu.Lock()
	onError := e.callbacks.OnError
	var notify func()
	if !kind.Restartable() && e.cfg.Mode == models.FullUtterance && e.state == StateListening {
		// No per-token timer drains a full-utterance session, and the
		// transcript is never coming: the session must end here.
		notify = e.failUtteranceLocked()
	}
	e.mu.Unlock()

	if onError != nil {
		onError(kind)
	}
	if notify != nil {
		notify()
	}
}

// failUtteranceLocked ends a full-utterance session whose transcript can
// no longer arrive: every ungraded token counts as wrong. Callers hold
// e.mu.
func (e *Engine) failUtteranceLocked() func() {
	session := e.session
	var pending []func()
	for i, token := range session.Tokens {
		if session.Results[i] != models.ResultPending {
			continue
		}
		session.Results[i] = models.ResultWrong
		pending = append(pending, e.resultNotification(i, models.ResultWrong)...)
		pending = append(pending, e.missNotification(token, e.cfg.MissSource))
	}
	session.CurrentIndex = len(session.Tokens)
	e.fullAccuracy = 0

	pending = append(pending, e.feedbackNotification("Recognition ended before the sentence was heard."))
	pending = append(pending, e.completeLocked())
	return sequence(pending)
}

func (e *Engine) clearTimersLocked() {
	if e.wordTimer != nil {
		e.wordTimer.Stop()
		e.wordTimer = nil
	}
	if e.graceTimer != nil {
		e.graceTimer.Stop()
		e.graceTimer = nil
	}
}

func (e *Engine) resultNotification(index int, result models.TokenResult) []func() {
	if e.callbacks.OnResult == nil {
		return nil
	}
	onResult := e.callbacks.OnResult
	return []func(){func() { onResult(index, result) }}
}

func (e *Engine) feedbackNotification(message string) func() {
	onFeedback := e.callbacks.OnFeedback
	return func() {
		if onFeedback != nil {
			onFeedback(message)
		}
	}
}

func (e *Engine) missNotification(token models.Token, source string) func() {
	onMiss := e.callbacks.OnMiss
	return func() {
		if onMiss != nil {
			onMiss(token.NormalizedText, source)
		}
	}
}

// nextGradable returns the first index at or after from whose token is
// long enough to grade, or len(tokens) when none remains.
func nextGradable(session *models.PracticeSession, from int) int {
	for i := from; i < len(session.Tokens); i++ {
		if !session.Tokens[i].IsShort() {
			return i
		}
	}
	return len(session.Tokens)
}

func sequence(fns []func()) func() {
	return func() {
		for _, fn := range fns {
			if fn != nil {
				fn()
			}
		}
	}
}
