package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer   Action = "answer"
	ActionFlag     Action = "flag"
	ActionNavigate Action = "navigate"
	ActionPing     Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AnswerRequest saves a single response for the current module.
type AnswerRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
	Type   string `json:"type"`
	Value  string `json:"value"`
}

// FlagRequest toggles the review flag on a question of the current module.
type FlagRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
}

// NavigateRequest jumps to a question of the current module.
type NavigateRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventSuccess Event = "success"
	EventTick    Event = "tick"
	EventPong    Event = "pong"
)

// TickResponse is the 1 Hz countdown/phase push.
type TickResponse struct {
	Event            Event    `json:"event"`
	Phase            string   `json:"phase"`
	Module           int      `json:"module"`
	QuestionIndex    int      `json:"question_index"`
	RemainingSeconds int      `json:"remaining_seconds"`
	Statuses         []string `json:"statuses"`
}

type SuccessResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
