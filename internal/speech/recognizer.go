// Package speech wraps a live speech-to-text capability behind a session
// adapter that survives the platform's utterance segmentation: many hosts
// end a recognition session after every detected pause, so the adapter
// restarts the capability while the caller still expects more speech.
package speech

// ErrorKind classifies recognition failures using the platform's own
// error names.
type ErrorKind string

const (
	// ErrorNoSpeech means the platform heard nothing.
	ErrorNoSpeech ErrorKind = "no-speech"
	// ErrorAborted means recognition was cancelled.
	ErrorAborted ErrorKind = "aborted"
	// ErrorNotAllowed means microphone permission was denied.
	ErrorNotAllowed ErrorKind = "not-allowed"
	// ErrorAudioCapture means no usable microphone was found.
	ErrorAudioCapture ErrorKind = "audio-capture"
	// ErrorNetwork covers transient platform transport failures.
	ErrorNetwork ErrorKind = "network"
	// ErrorUnavailable means the capability is missing or gave up;
	// fatal for the session.
	ErrorUnavailable ErrorKind = "unavailable"
)

// Restartable reports whether an error kind is a transient platform
// hiccup worth one automatic restart. Permission and user errors are
// not: the user must re-initiate manually.
func (k ErrorKind) Restartable() bool {
	switch k {
	case ErrorNoSpeech, ErrorAborted, ErrorNotAllowed, ErrorUnavailable:
		return false
	default:
		return true
	}
}

// Events are the callbacks a capability dispatches. Only final
// transcripts are delivered; interim results never reach the session.
type Events struct {
	OnStart func()
	// OnFinalTranscript fires once per completed utterance.
	OnFinalTranscript func(text string)
	OnError           func(kind ErrorKind)
	OnEnd             func()
}

// Capability is a live platform recognizer. Start may be called again
// after the capability has ended to begin a new listening session with
// the same event sinks. Stop and Abort must tolerate being called when
// the capability is not running.
type Capability interface {
	Start() error
	Stop()
	Abort()
}

// Factory opens the platform capability with the given event sinks. It
// returns an error when speech recognition is unavailable on the host,
// which is fatal for the session — there is no fallback.
type Factory func(Events) (Capability, error)
