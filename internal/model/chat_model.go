package model

type ChatEntry struct {
	ID        string    `json:"id,omitempty"`
	StudentID string    `json:"student_id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Timestamp Timestamp `json:"timestamp,omitzero"`
}
