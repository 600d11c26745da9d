package event

import (
	"encoding/json"
	"time"
)

// Output is the generated-artifact aggregate for one Event. It is always
// stored under its Event's ID.
type Output struct {
	EventID string `json:"-"`

	Schedule    []ScheduleItem            `json:"eventSchedule"`
	Budget      map[string]float64        `json:"budgetBreakdown"`
	Tasks       []Task                    `json:"taskChecklist"`
	FlowDiagram FlowDiagram               `json:"eventFlowDiagram"`
	Documents   map[DocumentKind]Document `json:"eventDocuments"`
	Posts       map[Platform]Post         `json:"socialPosts"`

	CreatedAt time.Time `json:"createdAt"`
}

type ScheduleItem struct {
	Time     string `json:"time"`
	Activity string `json:"activity"`
}

// Task is one checklist entry. Complexity is an integer score in 1..100.
type Task struct {
	ID         string `json:"id"`
	Task       string `json:"task"`
	Done       bool   `json:"task_done"`
	Complexity int    `json:"complexity"`
}

type FlowDiagram struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node data and position are owned by the diagram editor and kept as sent.
type Node struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data,omitempty"`
	Position json.RawMessage `json:"position,omitempty"`
}

type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
	Type   string `json:"type,omitempty"`
}

type Document struct {
	Type        DocumentKind `json:"type"`
	Theme       string       `json:"theme"`
	HTMLContent string       `json:"htmlContent"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type Post struct {
	Platform       Platform  `json:"platform"`
	Content        string    `json:"content"`
	CharacterCount int       `json:"characterCount"`
	CreatedAt      time.Time `json:"createdAt"`
	Subject        *string   `json:"subject,omitempty"`
	Hashtags       []string  `json:"hashtags,omitempty"`
}

// OutputField names an Output sub-mapping that accepts keyed merges.
type OutputField string

const (
	FieldDocuments OutputField = "eventDocuments"
	FieldPosts     OutputField = "socialPosts"
)

// Task returns the checklist entry with the given id.
func (o *Output) Task(id string) (*Task, bool) {
	for i := range o.Tasks {
		if o.Tasks[i].ID == id {
			return &o.Tasks[i], true
		}
	}
	return nil, false
}

// StartTime is the time of the first schedule entry, if any.
func (o *Output) StartTime() string {
	if o == nil || len(o.Schedule) == 0 {
		return ""
	}
	return o.Schedule[0].Time
}

// Clone deep-copies o through its JSON form.
func (o *Output) Clone() *Output {
	b, err := json.Marshal(o)
	if err != nil {
		panic(err)
	}
	var c Output
	if err := json.Unmarshal(b, &c); err != nil {
		panic(err)
	}
	c.EventID = o.EventID
	return &c
}

// EnsureMaps replaces nil collections with empty ones so the JSON form never
// carries null for a list or mapping.
func (o *Output) EnsureMaps() {
	if o.Schedule == nil {
		o.Schedule = []ScheduleItem{}
	}
	if o.Budget == nil {
		o.Budget = map[string]float64{}
	}
	if o.Tasks == nil {
		o.Tasks = []Task{}
	}
	if o.FlowDiagram.Nodes == nil {
		o.FlowDiagram.Nodes = []Node{}
	}
	if o.FlowDiagram.Edges == nil {
		o.FlowDiagram.Edges = []Edge{}
	}
	if o.Documents == nil {
		o.Documents = map[DocumentKind]Document{}
	}
	if o.Posts == nil {
		o.Posts = map[Platform]Post{}
	}
}
