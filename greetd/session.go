// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

package greetd

import (
	"fmt"
	"log/slog"
)

// Phase is the state machine's position in the login protocol. The
// same Success response means different things after session
// creation, after a credential reply, and after a session-start
// request, so the client tracks phase independently of the payload.
type Phase int

const (
	// PhaseIdle means no attempt is in progress.
	PhaseIdle Phase = iota
	// PhaseAwaitingSessionCreation follows a CreateSession request.
	PhaseAwaitingSessionCreation
	// PhaseAwaitingAuthResponse means an interactive prompt is
	// waiting for the caller to supply a value.
	PhaseAwaitingAuthResponse
	// PhaseAwaitingLoginResult follows a credential reply.
	PhaseAwaitingLoginResult
	// PhaseReadyToStartSession means authentication succeeded and
	// the caller must choose what to launch.
	PhaseReadyToStartSession
	// PhaseFailed is terminal for the attempt; BeginLogin starts a
	// fresh one.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAwaitingSessionCreation:
		return "awaiting_session_creation"
	case PhaseAwaitingAuthResponse:
		return "awaiting_auth_response"
	case PhaseAwaitingLoginResult:
		return "awaiting_login_result"
	case PhaseReadyToStartSession:
		return "ready_to_start_session"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Event tells the session's owner what a handled response means for
// the UI, beyond what the observation accessors expose.
type Event int

const (
	// EventNone: nothing user-visible changed.
	EventNone Event = iota
	// EventPrompt: an interactive prompt awaits SupplyAuthValue.
	EventPrompt
	// EventNotice: an informational or error notice was recorded
	// (and already acknowledged on the wire).
	EventNotice
	// EventReady: authentication succeeded; choose a session.
	EventReady
	// EventSessionStarted: the daemon confirmed the session start.
	// The greeter's job is done.
	EventSessionStarted
	// EventFailed: the attempt failed; FailureReason is set.
	EventFailed
)

// Sender is the Session's outbound edge, implemented by *Dispatcher.
type Sender interface {
	Send(Request) error
}

// Session is the authentication state machine for one login attempt.
// It is owned by a single goroutine (the UI event loop): intents
// arrive through method calls, daemon responses through
// HandleResponse, and neither the Listener nor the Dispatcher ever
// touch it directly.
//
// The machine never emits a second request before the previous one is
// answered. Intents that would violate this fail with
// ErrRequestInFlight; Cancel is the one exception, since cancellation
// is fire-and-forget and the daemon connection is the point of truth.
type Session struct {
	sender Sender
	logger *slog.Logger

	phase    Phase
	username string

	// stashedSecret holds a credential supplied before the matching
	// secret prompt arrived (the greeter collects username and
	// password up front). Consumed by the first secret prompt.
	stashedSecret *string

	// prompt is the unanswered interactive AuthMessage, nil otherwise.
	prompt *AuthMessage

	// startPending is true between StartSession being sent and its
	// response arriving.
	startPending bool

	// inflight is true while a request is sent but unanswered.
	inflight bool

	lastResponse  Response
	noticeText    string
	noticeKind    AuthMessageKind
	failureReason string
}

// NewSession creates an idle state machine emitting requests through
// sender.
func NewSession(sender Sender, logger *slog.Logger) *Session {
	return &Session{sender: sender, logger: logger, phase: PhaseIdle}
}

// --- Observation API ---

// Phase returns the current protocol phase.
func (s *Session) Phase() Phase { return s.phase }

// Username returns the username of the current attempt.
func (s *Session) Username() string { return s.username }

// Prompt returns the pending interactive prompt, or nil.
func (s *Session) Prompt() *AuthMessage { return s.prompt }

// Notice returns the most recent informational or error notice and
// its kind. Empty until the daemon sends one.
func (s *Session) Notice() (string, AuthMessageKind) { return s.noticeText, s.noticeKind }

// LastResponse returns the most recently handled Response, for
// diagnostic display. Nil before the first response.
func (s *Session) LastResponse() Response { return s.lastResponse }

// FailureReason returns the daemon's description of why the attempt
// failed. Empty unless the phase is PhaseFailed.
func (s *Session) FailureReason() string { return s.failureReason }

// --- Intent API ---

// BeginLogin starts a login attempt for username. Valid from
// PhaseIdle and PhaseFailed; a previous failure is discarded.
func (s *Session) BeginLogin(username string) error {
	if s.phase != PhaseIdle && s.phase != PhaseFailed {
		return fmt.Errorf("greetd: cannot begin login in phase %s", s.phase)
	}
	s.reset()
	s.username = username
	if err := s.sender.Send(CreateSession{Username: username}); err != nil {
		return err
	}
	s.phase = PhaseAwaitingSessionCreation
	s.inflight = true
	return nil
}

// SupplyAuthValue answers the pending interactive prompt. When called
// before any prompt has arrived (the greeter collects the password
// alongside the username), the value is stashed and the first secret
// prompt consumes it without a round trip through the caller.
func (s *Session) SupplyAuthValue(value string) error {
	switch s.phase {
	case PhaseAwaitingAuthResponse:
		if s.prompt == nil {
			return fmt.Errorf("greetd: no prompt awaiting a value")
		}
		if err := s.sendAuthResponse(&value); err != nil {
			return err
		}
		s.prompt = nil
		return nil
	case PhaseAwaitingSessionCreation, PhaseAwaitingLoginResult:
		s.stashedSecret = &value
		return nil
	default:
		return fmt.Errorf("greetd: no login attempt accepting auth values in phase %s", s.phase)
	}
}

// ChooseSession asks the daemon to launch command once authentication
// has succeeded.
func (s *Session) ChooseSession(command, env []string) error {
	if s.phase != PhaseReadyToStartSession {
		return fmt.Errorf("greetd: cannot start a session in phase %s", s.phase)
	}
	if s.inflight {
		return ErrRequestInFlight
	}
	if len(command) == 0 {
		return fmt.Errorf("greetd: empty session command")
	}
	if env == nil {
		// The daemon expects an array, not null.
		env = []string{}
	}
	if err := s.sender.Send(StartSession{Command: command, Env: env}); err != nil {
		return err
	}
	s.inflight = true
	s.startPending = true
	return nil
}

// Cancel aborts the attempt and returns to PhaseIdle immediately,
// without waiting for the daemon's answer. A no-op when idle or
// already failed. Send errors are logged, not returned: after a
// cancel the local state is reset regardless of what the daemon saw.
func (s *Session) Cancel() {
	if s.phase == PhaseIdle || s.phase == PhaseFailed {
		return
	}
	if err := s.sender.Send(CancelSession{}); err != nil {
		s.logger.Warn("cancel not delivered", "error", err)
	}
	s.reset()
}

// ConnectionLost records a transport failure as a terminal attempt
// failure, distinct from daemon-reported credential errors.
func (s *Session) ConnectionLost(err error) Event {
	if s.phase == PhaseIdle || s.phase == PhaseFailed {
		return EventNone
	}
	s.logger.Warn("connection lost mid-attempt", "phase", s.phase.String(), "error", err)
	s.fail("cannot reach login service")
	return EventFailed
}

// --- Response handling ---

// HandleResponse advances the machine for one inbound response. The
// transition function is total over (Phase, response kind): any
// combination outside the protocol's legal orderings is logged as a
// protocol violation and otherwise ignored, because a misordered or
// duplicated frame should not abort an otherwise-recoverable attempt.
func (s *Session) HandleResponse(response Response) Event {
	s.lastResponse = response

	switch response := response.(type) {
	case Success:
		return s.handleSuccess()
	case ErrorResponse:
		return s.handleError(response)
	case AuthMessage:
		return s.handleAuthMessage(response)
	default:
		s.violation(response)
		return EventNone
	}
}

func (s *Session) handleSuccess() Event {
	switch s.phase {
	case PhaseAwaitingSessionCreation, PhaseAwaitingLoginResult:
		if !s.inflight {
			s.violation(Success{})
			return EventNone
		}
		// No (further) prompt required; proceed to session choice.
		s.inflight = false
		s.phase = PhaseReadyToStartSession
		return EventReady
	case PhaseAwaitingAuthResponse:
		// The daemon concluded the conversation without waiting for
		// the pending prompt's answer (PAM may abandon a prompt).
		s.inflight = false
		s.prompt = nil
		s.stashedSecret = nil
		s.phase = PhaseReadyToStartSession
		return EventReady
	case PhaseReadyToStartSession:
		if s.inflight && s.startPending {
			s.inflight = false
			s.startPending = false
			return EventSessionStarted
		}
		s.violation(Success{})
		return EventNone
	default:
		s.violation(Success{})
		return EventNone
	}
}

func (s *Session) handleError(response ErrorResponse) Event {
	if s.phase == PhaseIdle || s.phase == PhaseFailed {
		s.violation(response)
		return EventNone
	}
	s.inflight = false
	s.startPending = false
	s.fail(response.Description)
	return EventFailed
}

func (s *Session) handleAuthMessage(message AuthMessage) Event {
	switch s.phase {
	case PhaseAwaitingSessionCreation, PhaseAwaitingAuthResponse, PhaseAwaitingLoginResult:
	default:
		// Includes (PhaseIdle, AuthMessage), (PhaseFailed, AuthMessage)
		// and a prompt arriving after authentication completed.
		s.violation(message)
		return EventNone
	}
	s.inflight = false

	if message.Kind.Interactive() {
		s.phase = PhaseAwaitingAuthResponse
		s.prompt = &message
		if message.Kind == AuthSecret && s.stashedSecret != nil {
			value := s.stashedSecret
			s.stashedSecret = nil
			s.prompt = nil
			if err := s.sendAuthResponse(value); err != nil {
				s.logger.Warn("stashed credential not delivered", "error", err)
				s.fail("cannot reach login service")
				return EventFailed
			}
			return EventNone
		}
		return EventPrompt
	}

	// Info and error notices require no input, only an empty
	// acknowledgement to keep the protocol moving. The phase holds.
	s.noticeText = message.Message
	s.noticeKind = message.Kind
	if err := s.sender.Send(PostAuthMessageResponse{}); err != nil {
		s.logger.Warn("notice acknowledgement not delivered", "error", err)
		s.fail("cannot reach login service")
		return EventFailed
	}
	s.inflight = true
	return EventNotice
}

// --- internals ---

func (s *Session) sendAuthResponse(value *string) error {
	if err := s.sender.Send(PostAuthMessageResponse{Response: value}); err != nil {
		return err
	}
	s.phase = PhaseAwaitingLoginResult
	s.inflight = true
	return nil
}

func (s *Session) fail(reason string) {
	s.phase = PhaseFailed
	s.failureReason = reason
	s.prompt = nil
	s.stashedSecret = nil
	s.inflight = false
	s.startPending = false
}

func (s *Session) reset() {
	s.phase = PhaseIdle
	s.username = ""
	s.prompt = nil
	s.stashedSecret = nil
	s.inflight = false
	s.startPending = false
	s.failureReason = ""
	s.noticeText = ""
	s.noticeKind = ""
}

func (s *Session) violation(response Response) {
	s.logger.Warn("protocol violation: unexpected response for phase",
		"phase", s.phase.String(),
		"response", response.responseType(),
		"in_flight", s.inflight)
}
