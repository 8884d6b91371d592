package output

import "time"

// PredictionOutput is the JSON form of one prediction.
type PredictionOutput struct {
	ID             string            `json:"id,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	Label          int               `json:"label"`
	Probability    float64           `json:"probability"`
	Exceeds        bool              `json:"exceeds"`
	Message        string            `json:"message"`
	Model          string            `json:"model"`
	ModelVersion   string            `json:"model_version,omitempty"`
	Inputs         map[string]string `json:"inputs"`
	UnknownColumns []string          `json:"unknown_columns,omitempty"`
}

// HistoryOutput is the JSON form of the history command.
type HistoryOutput struct {
	Total       int                `json:"total"`
	Predictions []PredictionOutput `json:"predictions"`
}

// InspectOutput is the JSON form of the inspect command.
type InspectOutput struct {
	Name          string    `json:"name"`
	Version       string    `json:"version"`
	Kind          string    `json:"kind"`
	Path          string    `json:"path"`
	Checksum      string    `json:"checksum"`
	LoadedAt      time.Time `json:"loaded_at"`
	Features      int       `json:"features"`
	Classes       []int     `json:"classes"`
	ColumnsSource string    `json:"columns_source"`
	Columns       []string  `json:"columns"`
}

// DoctorCheck is one doctor diagnostic.
type DoctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Detail  string `json:"detail"`
	Warning bool   `json:"warning,omitempty"`
}

// DoctorOutput is the JSON form of the doctor command.
type DoctorOutput struct {
	Healthy bool          `json:"healthy"`
	Checks  []DoctorCheck `json:"checks"`
}
