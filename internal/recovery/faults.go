// Package recovery imposes a closed fault taxonomy on everything that can go
// wrong around the classification pipeline, and decides between local retry
// (bounded exponential backoff per operation id) and surfacing the fault.
// Nothing here is fatal: the worst outcome is a user-facing message.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/sony/gobreaker"
)

// Kind is one member of the closed fault taxonomy.
type Kind string

const (
	KindLLMTimeout            Kind = "llm_timeout"
	KindLLMNetworkError       Kind = "llm_network_error"
	KindNetworkUnavailable    Kind = "network_unavailable"
	KindClassificationFailed  Kind = "classification_failed"
	KindNeedsClarification    Kind = "needs_clarification"
	KindNoSpeechDetected      Kind = "no_speech_detected"
	KindVoicePermissionDenied Kind = "voice_permission_denied"
	KindUnknown               Kind = "unknown"
)

// Fault is a classified error. Detail is internal-only; UserMessage never
// leaks it.
type Fault struct {
	Kind   Kind
	Detail string
}

func (f *Fault) Error() string {
	if f.Detail == "" {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// NewFault builds a fault of the given kind.
func NewFault(kind Kind, detail string) *Fault {
	return &Fault{Kind: kind, Detail: detail}
}

// UserMessage is the fixed user-facing text per kind. No technical detail.
func (f *Fault) UserMessage() string {
	switch f.Kind {
	case KindLLMTimeout:
		return "That took longer than expected. Give it another try."
	case KindLLMNetworkError, KindNetworkUnavailable:
		return "I couldn't reach the caddy service. Check your connection and try again."
	case KindClassificationFailed:
		return "I couldn't quite work out what you meant. Try rephrasing that."
	case KindNeedsClarification:
		return "Could you tell me a bit more about what you'd like to do?"
	case KindNoSpeechDetected:
		return "I didn't catch anything. Try speaking again or type your request."
	case KindVoicePermissionDenied:
		return "I don't have microphone access. You can type instead, or enable it in settings."
	default:
		return "Something went wrong on my end. Please try again."
	}
}

// IsRecoverable reports whether the user can plausibly succeed by acting on
// the message (retrying, rephrasing, granting permission).
func (f *Fault) IsRecoverable() bool {
	return f.Kind != KindUnknown
}

// ShouldAutoRetry reports whether the engine may retry without the user.
// Parse and permission failures never auto-retry.
func (f *Fault) ShouldAutoRetry() bool {
	switch f.Kind {
	case KindLLMTimeout, KindLLMNetworkError, KindNetworkUnavailable:
		return true
	default:
		return false
	}
}

// FallbackSuggestions returns up to 3 locally computed alternatives for
// non-retryable faults.
func (f *Fault) FallbackSuggestions() []string {
	switch f.Kind {
	case KindClassificationFailed, KindNeedsClarification:
		return []string{
			"Ask for a shot recommendation",
			"Enter a score",
			"Check your readiness",
		}
	case KindNoSpeechDetected:
		return []string{"Type your request", "Move somewhere quieter and retry"}
	case KindVoicePermissionDenied:
		return []string{"Type your request", "Enable microphone access in settings"}
	default:
		return nil
	}
}

// RecoveryAction names an explicit follow-up the UI can offer, when one
// applies.
func (f *Fault) RecoveryAction() string {
	switch f.Kind {
	case KindVoicePermissionDenied:
		return "open_settings"
	case KindNetworkUnavailable:
		return "enable_offline_mode"
	default:
		return ""
	}
}

// Classify maps an arbitrary error into the taxonomy. Already-classified
// faults pass through unchanged.
func Classify(err error) *Fault {
	if err == nil {
		return nil
	}

	var fault *Fault
	if errors.As(err, &fault) {
		return fault
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewFault(KindLLMTimeout, err.Error())
	}
	if errors.Is(err, context.Canceled) {
		return NewFault(KindLLMTimeout, err.Error())
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return NewFault(KindNetworkUnavailable, err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return NewFault(KindLLMTimeout, err.Error())
		}
		return NewFault(KindLLMNetworkError, err.Error())
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return NewFault(KindLLMTimeout, err.Error())
	case strings.Contains(msg, "connection") || strings.Contains(msg, "network") || strings.Contains(msg, "unreachable"):
		return NewFault(KindLLMNetworkError, err.Error())
	case strings.Contains(msg, "parse") || strings.Contains(msg, "schema") || strings.Contains(msg, "unmarshal"):
		return NewFault(KindClassificationFailed, err.Error())
	default:
		return NewFault(KindUnknown, err.Error())
	}
}
