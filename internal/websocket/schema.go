package websocket

import "github.com/astraid/intervox-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionDraft  Action = "draft"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// DraftRequest carries an incremental transcript update for the current
// question.
type DraftRequest struct {
	Action Action `json:"action"`
	Answer string `json:"answer"`
}

// SubmitRequest finalizes the current answer. A nil Answer submits the
// stored draft.
type SubmitRequest struct {
	Action Action  `json:"action"`
	Answer *string `json:"answer"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventState Event = "state"
	EventAck   Event = "ack"
	EventError Event = "error"
	EventPong  Event = "pong"
)

// StateResponse pushes a full session snapshot after every change.
type StateResponse struct {
	Event     Event            `json:"event"`
	Interview *model.Interview `json:"interview"`
}

type AckResponse struct {
	Event  Event  `json:"event"`
	Action Action `json:"action"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
