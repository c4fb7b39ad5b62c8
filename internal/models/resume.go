package models

import (
	"encoding/json"
	"time"
)

// Resume is a generated resume together with the answers it was generated from.
type Resume struct {
	ID               int64           `json:"id" db:"id"`
	Profession       string          `json:"profession" db:"profession"`
	GeneratedContent string          `json:"content" db:"generated_content"`
	InputData        json.RawMessage `json:"input_data" db:"input_data"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

const UnknownProfession = "Unknown"
