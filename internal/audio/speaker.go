// Package audio covers the speaking side of practice: a Speaker plays a
// prompt to the student, and a PromptCache prepares spoken word prompts
// as MP3 files ahead of time.
package audio

import "sync"

// Speaker plays one utterance at a time. Speak may invoke onDone
// synchronously; starting a new utterance while one is in flight
// replaces it, and the replaced utterance's onDone is dropped.
type Speaker interface {
	Speak(text string, onDone func())
	Cancel()
}

// NullSpeaker is a Speaker that produces no sound and completes every
// utterance immediately. Useful for tests and silent environments.
type NullSpeaker struct {
	mu        sync.Mutex
	cancelled bool
}

func (s *NullSpeaker) Speak(text string, onDone func()) {
	s.mu.Lock()
	s.cancelled = false
	s.mu.Unlock()
	if onDone != nil {
		onDone()
	}
}

func (s *NullSpeaker) Cancel() {
	s.mu.Lock()
	s.cancelled = true
	s.mu.Unlock()
}
