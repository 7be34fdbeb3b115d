package response

// Window describes a list that was cut down for display.
type Window struct {
	Limit     int  `json:"limit"`
	Shown     int  `json:"shown"`
	Total     int  `json:"total"`
	Truncated bool `json:"truncated"`
}

func NewWindow(limit, total int) Window {
	shown := total
	if limit > 0 && shown > limit {
		shown = limit
	}
	return Window{
		Limit:     limit,
		Shown:     shown,
		Total:     total,
		Truncated: shown < total,
	}
}
