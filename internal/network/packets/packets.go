// Package packets defines the JSON messages streamed to IK observers.
package packets

import "encoding/json"

// Version is the observer protocol version.
const Version = "1.0"

// Message types.
const (
	TypeHello = "HELLO"
	TypeFrame = "FRAME"
)

// Tuning mirrors the solver parameters a client needs to interpret frames.
type Tuning struct {
	FootInterpSpeed       float32 `json:"foot_interp_speed"`
	HipInterpSpeed        float32 `json:"hip_interp_speed"`
	ProbeDistance         float32 `json:"probe_distance"`
	AdjustOffsetBias      float32 `json:"adjust_offset_bias"`
	BaseCapsuleHalfHeight float32 `json:"base_capsule_half_height"`
}

// Hello is the first message on every observer connection.
type Hello struct {
	Type       string   `json:"type"`
	Version    string   `json:"protocol_version"`
	World      string   `json:"world"`
	TickRateHz int      `json:"tick_rate_hz"`
	Characters []string `json:"characters"`
	Tuning     Tuning   `json:"tuning"`
}

// Foot is one foot's IK state within a frame.
type Foot struct {
	Socket   string  `json:"socket"`
	Hit      bool    `json:"hit"`
	Distance float32 `json:"distance,omitempty"`
	Offset   float32 `json:"offset"`
	Effector float32 `json:"effector"`
	Pitch    float32 `json:"pitch"`
	Roll     float32 `json:"roll"`
}

// Frame is one character's IK state after a tick.
type Frame struct {
	Type              string     `json:"type"`
	Tick              uint64     `json:"tick"`
	Time              float64    `json:"time"`
	Character         string     `json:"character"`
	Phase             string     `json:"phase"`
	Position          [3]float32 `json:"position"`
	Speed             float32    `json:"speed"`
	Left              Foot       `json:"left"`
	Right             Foot       `json:"right"`
	HipOffset         float32    `json:"hip_offset"`
	CapsuleHalfHeight float32    `json:"capsule_half_height"`
}

// Encode marshals a message to JSON.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}
