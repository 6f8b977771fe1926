// Copyright 2026 The Impolite Authors
// SPDX-License-Identifier: Apache-2.0

package greetd

import (
	"encoding/json"
	"fmt"
)

// Request is an outbound protocol message. Exactly one concrete type
// is active per message: CreateSession, PostAuthMessageResponse,
// StartSession, or CancelSession. The wire tag ("type" field) is the
// snake_case name of the variant.
type Request interface {
	requestType() string
}

// CreateSession begins authentication for a user.
type CreateSession struct {
	Username string `json:"username"`
}

func (CreateSession) requestType() string { return "create_session" }

// PostAuthMessageResponse answers a pending credential prompt.
// Response is nil when no reply is required, e.g. when acknowledging
// an informational notice; the field is then omitted on the wire.
type PostAuthMessageResponse struct {
	Response *string `json:"response,omitempty"`
}

func (PostAuthMessageResponse) requestType() string { return "post_auth_message_response" }

// StartSession asks the daemon to launch the authenticated session.
type StartSession struct {
	Command []string `json:"command"`
	Env     []string `json:"env"`
}

func (StartSession) requestType() string { return "start_session" }

// CancelSession aborts an in-progress authentication attempt.
type CancelSession struct{}

func (CancelSession) requestType() string { return "cancel_session" }

// Response is an inbound protocol message: Success, ErrorResponse, or
// AuthMessage.
type Response interface {
	responseType() string
}

// Success reports that the last request succeeded.
type Success struct{}

func (Success) responseType() string { return "success" }

// ErrorResponse reports that the last request failed. Kind
// distinguishes authentication failures from generic daemon errors.
type ErrorResponse struct {
	Kind        ErrorKind `json:"error_type"`
	Description string    `json:"description"`
}

func (ErrorResponse) responseType() string { return "error" }

// AuthMessage is a daemon prompt or notice. Secret and Visible kinds
// require a reply carrying user input (masked or echoed respectively);
// Info and Error kinds are non-interactive notices that still require
// an empty acknowledgement to keep the protocol moving.
type AuthMessage struct {
	Kind    AuthMessageKind `json:"auth_message_type"`
	Message string          `json:"auth_message"`
}

func (AuthMessage) responseType() string { return "auth_message" }

// AuthMessageKind classifies an AuthMessage. Serialized as the bare
// snake_case name.
type AuthMessageKind string

const (
	// AuthVisible prompts for input that should be echoed.
	AuthVisible AuthMessageKind = "visible"
	// AuthSecret prompts for input that should be masked.
	AuthSecret AuthMessageKind = "secret"
	// AuthInfo conveys information; no input is expected.
	AuthInfo AuthMessageKind = "info"
	// AuthError conveys a non-fatal error notice; no input is expected.
	AuthError AuthMessageKind = "error"
)

// Interactive reports whether the message kind prompts for user input.
func (kind AuthMessageKind) Interactive() bool {
	return kind == AuthVisible || kind == AuthSecret
}

// ErrorKind classifies an ErrorResponse. Serialized as the bare
// snake_case name.
type ErrorKind string

const (
	// ErrorKindAuth is an authentication-specific failure (bad
	// credentials, expired account).
	ErrorKindAuth ErrorKind = "auth_error"
	// ErrorKindGeneric is any other daemon or protocol failure.
	ErrorKindGeneric ErrorKind = "error"
)

// marshalRequest produces the tagged-union JSON encoding of a request.
// The anonymous wrapper structs put the "type" field first so the
// output matches the daemon's own encoding byte for byte.
func marshalRequest(request Request) ([]byte, error) {
	switch request := request.(type) {
	case CreateSession:
		return json.Marshal(struct {
			Type string `json:"type"`
			CreateSession
		}{request.requestType(), request})
	case PostAuthMessageResponse:
		return json.Marshal(struct {
			Type string `json:"type"`
			PostAuthMessageResponse
		}{request.requestType(), request})
	case StartSession:
		return json.Marshal(struct {
			Type string `json:"type"`
			StartSession
		}{request.requestType(), request})
	case CancelSession:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{request.requestType()})
	default:
		return nil, fmt.Errorf("greetd: unknown request type %T", request)
	}
}

// unmarshalResponse decodes the tagged-union JSON encoding of a
// response. The payload must already be known-valid UTF-8.
func unmarshalResponse(payload []byte) (Response, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, &ProtocolDecodeError{Payload: payload, Err: err}
	}

	switch envelope.Type {
	case "success":
		return Success{}, nil
	case "error":
		var response ErrorResponse
		if err := json.Unmarshal(payload, &response); err != nil {
			return nil, &ProtocolDecodeError{Payload: payload, Err: err}
		}
		return response, nil
	case "auth_message":
		var response AuthMessage
		if err := json.Unmarshal(payload, &response); err != nil {
			return nil, &ProtocolDecodeError{Payload: payload, Err: err}
		}
		return response, nil
	default:
		return nil, &ProtocolDecodeError{
			Payload: payload,
			Err:     fmt.Errorf("unknown response type %q", envelope.Type),
		}
	}
}
