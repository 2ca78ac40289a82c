package domain

import "time"

// ModelOutput is the raw text a model returned for one receipt image.
type ModelOutput struct {
	RunID     string
	Source    string
	EventName string
	ModelName string
	Raw       string
	CreatedAt time.Time
}
