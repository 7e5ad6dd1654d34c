// pkg/api/summary_v1.go
package api

// ModelV1 is the reported model of one strand.
type ModelV1 struct {
	Name    string  `json:"name"`
	Scale   float64 `json:"scale"`
	Shift   float64 `json:"shift"`
	Drift   float64 `json:"drift"`
	Var     float64 `json:"var"`
	ScaleSD float64 `json:"scale_sd"`
	VarSD   float64 `json:"var_sd"`
	PStay   float64 `json:"p_stay"`
	PSkip   float64 `json:"p_skip"`
}

// CandidateV1 is one calibration candidate; an empty model name means the
// strand has no model in this candidate.
type CandidateV1 struct {
	TemplateModel   string  `json:"template_model"`
	ComplementModel string  `json:"complement_model"`
	Scale           float64 `json:"scale"`
	Shift           float64 `json:"shift"`
}

// SummaryV1 is the stable JSON/JSONL schema for read summaries.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type SummaryV1 struct {
	FileName        string        `json:"file_name"`
	ReadName        string        `json:"read_name"`
	NumEvents       int           `json:"num_events"`
	AbasicLevel     float64       `json:"abasic_level"`
	TemplateStart   int           `json:"template_start"`
	TemplateEnd     int           `json:"template_end"`
	ComplementStart int           `json:"complement_start"`
	ComplementEnd   int           `json:"complement_end"`
	Template        *ModelV1      `json:"template,omitempty"`
	Complement      *ModelV1      `json:"complement,omitempty"`
	SamplingRate    float64       `json:"sampling_rate,omitempty"`
	TimeLength      []float64     `json:"time_length,omitempty"`
	JointScaling    bool          `json:"joint_scaling,omitempty"`
	Tag             string        `json:"tag,omitempty"`
	RejectReason    string        `json:"reject_reason,omitempty"`
	Candidates      []CandidateV1 `json:"candidates,omitempty"`
}
