package model

type StatusResponse struct {
	SessionID  string   `json:"session_id"`
	Chord      string   `json:"chord"`
	Notes      []string `json:"notes"`
	BPM        int      `json:"bpm"`
	Confidence float64  `json:"confidence"`
}
