// Package archive persists live session transcripts. It contains the record
// types, a key-value backed store, the REST server that exposes the store,
// and the HTTP client the live controller uses as its persistence gateway.
//
// All controller-side calls are best-effort: the live media path never waits
// on the archive, and archive failures are logged, not surfaced.
package archive

import (
	"errors"
	"fmt"

	"github.com/livemind/livemind/pkg/jsontime"
)

// ErrNotFound is returned when a session or message does not exist.
var ErrNotFound = errors.New("archive: not found")

// Status is the lifecycle status recorded for a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderModel Sender = "model"
)

// SessionMeta is the client-supplied metadata recorded at session creation.
// Geolocation is optional; its absence never blocks creation.
type SessionMeta struct {
	ModelName        string   `json:"modelName"`
	UserID           string   `json:"user_id"`
	ClientIdentifier string   `json:"client_identifier"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`
	DeviceType       string   `json:"device_type,omitempty"`
	ScreenRes        string   `json:"screen_res,omitempty"`
	VoiceName        string   `json:"voice_name,omitempty"`
	CameraEnabled    bool     `json:"camera_enabled,omitempty"`
	MicEnabled       bool     `json:"mic_enabled,omitempty"`
}

// Session is one archived live session.
type Session struct {
	ID               string         `json:"id" msgpack:"id"`
	UserID           string         `json:"user_id" msgpack:"user_id"`
	ModelName        string         `json:"model_name" msgpack:"model_name"`
	VoiceName        string         `json:"voice_name,omitempty" msgpack:"voice_name"`
	CameraEnabled    bool           `json:"camera_enabled" msgpack:"camera_enabled"`
	MicEnabled       bool           `json:"mic_enabled" msgpack:"mic_enabled"`
	ClientIdentifier string         `json:"client_identifier,omitempty" msgpack:"client_identifier"`
	ClientIP         string         `json:"client_ip,omitempty" msgpack:"client_ip"`
	UserAgent        string         `json:"user_agent,omitempty" msgpack:"user_agent"`
	Latitude         *float64       `json:"latitude,omitempty" msgpack:"latitude"`
	Longitude        *float64       `json:"longitude,omitempty" msgpack:"longitude"`
	DeviceType       string         `json:"device_type,omitempty" msgpack:"device_type"`
	ScreenRes        string         `json:"screen_res,omitempty" msgpack:"screen_res"`
	Status           Status         `json:"status" msgpack:"status"`
	StartedAt        jsontime.Milli `json:"started_at" msgpack:"started_at"`
	EndedAt          *jsontime.Milli `json:"ended_at,omitempty" msgpack:"ended_at"`
	DurationSeconds  float64        `json:"duration_seconds,omitempty" msgpack:"duration_seconds"`
	LastError        string         `json:"last_error,omitempty" msgpack:"last_error"`
}

// Message is one finalized transcript entry. Messages are immutable once
// created; Seq is the creation order within the session.
type Message struct {
	ID        string         `json:"id" msgpack:"id"`
	SessionID string         `json:"session_id" msgpack:"session_id"`
	Sender    Sender         `json:"sender" msgpack:"sender"`
	Text      string         `json:"text" msgpack:"text"`
	Seq       int            `json:"seq" msgpack:"seq"`
	CreatedAt jsontime.Milli `json:"created_at" msgpack:"created_at"`
}

// SessionDetail is a session with its full ordered transcript.
type SessionDetail struct {
	Metadata Session   `json:"metadata"`
	Messages []Message `json:"messages"`
}

// APIError is an error response from the archive server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("archive: %d: %s", e.StatusCode, e.Message)
}

func validSender(s Sender) bool {
	return s == SenderUser || s == SenderModel
}

func validStatus(s Status) bool {
	switch s {
	case StatusActive, StatusCompleted, StatusError:
		return true
	}
	return false
}
