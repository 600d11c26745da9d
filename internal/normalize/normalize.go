// Package normalize turns raw model text into the canonical event.Output
// shapes. It is the only writer of generated artifacts: consumers never
// have to check for missing fields.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"eventplanner/internal/event"

	"github.com/google/uuid"
)

// DefaultComplexity is used when the model omits a task's complexity or
// gives a value that cannot be read as a score.
const DefaultComplexity = 50

const subjectMarker = "SUBJECT:"

var fenceRe = regexp.MustCompile("```[A-Za-z0-9_-]*")

// Normalizer converts model output. NewID mints task and node ids.
type Normalizer struct {
	NewID func() string
}

func New() *Normalizer {
	return &Normalizer{NewID: uuid.NewString}
}

// rawOutput mirrors the schema requested from the model. Every field is
// optional and loosely typed until normalized.
type rawOutput struct {
	Schedule    []rawScheduleItem `json:"eventSchedule"`
	Budget      map[string]any    `json:"budgetBreakdown"`
	Tasks       []json.RawMessage `json:"taskChecklist"`
	FlowDiagram *rawFlowDiagram   `json:"eventFlowDiagram"`
}

type rawScheduleItem struct {
	Time     any `json:"time"`
	Activity any `json:"activity"`
}

type rawTask struct {
	Task       *string `json:"task"`
	Title      *string `json:"title"`
	Name       *string `json:"name"`
	Complexity any     `json:"complexity"`
}

type rawFlowDiagram struct {
	Nodes []rawNode `json:"nodes"`
	Edges []rawEdge `json:"edges"`
}

type rawNode struct {
	ID       any             `json:"id"`
	Type     any             `json:"type"`
	Data     json.RawMessage `json:"data"`
	Position json.RawMessage `json:"position"`
}

type rawEdge struct {
	ID     any `json:"id"`
	Source any `json:"source"`
	Target any `json:"target"`
	Label  any `json:"label"`
	Type   any `json:"type"`
}

// EventData parses the core generation response.
func (n *Normalizer) EventData(raw string, now time.Time) (*event.Output, error) {
	cleaned := strings.TrimSpace(StripFences(raw))

	var in rawOutput
	if err := decodeObject(cleaned, &in); err != nil {
		return nil, &event.MalformedOutputError{Reason: "AI output is not valid JSON", Raw: cleaned, Err: err}
	}

	out := &event.Output{
		Schedule:  make([]event.ScheduleItem, 0, len(in.Schedule)),
		Budget:    make(map[string]float64, len(in.Budget)),
		Tasks:     make([]event.Task, 0, len(in.Tasks)),
		CreatedAt: now.UTC(),
	}

	for _, it := range in.Schedule {
		out.Schedule = append(out.Schedule, event.ScheduleItem{
			Time:     stringify(it.Time),
			Activity: stringify(it.Activity),
		})
	}

	for category, v := range in.Budget {
		if amount, ok := number(v); ok {
			out.Budget[category] = amount
		}
	}

	for _, rt := range in.Tasks {
		t, ok := n.task(rt)
		if ok {
			out.Tasks = append(out.Tasks, t)
		}
	}

	if in.FlowDiagram != nil {
		out.FlowDiagram.Nodes = make([]event.Node, 0, len(in.FlowDiagram.Nodes))
		for _, rn := range in.FlowDiagram.Nodes {
			out.FlowDiagram.Nodes = append(out.FlowDiagram.Nodes, n.node(rn))
		}
		out.FlowDiagram.Edges = make([]event.Edge, 0, len(in.FlowDiagram.Edges))
		for _, re := range in.FlowDiagram.Edges {
			out.FlowDiagram.Edges = append(out.FlowDiagram.Edges, event.Edge{
				ID:     stringify(re.ID),
				Source: stringify(re.Source),
				Target: stringify(re.Target),
				Label:  stringify(re.Label),
				Type:   stringify(re.Type),
			})
		}
	}

	out.EnsureMaps()
	return out, nil
}

// Document validates an HTML document response and stores it verbatim.
// No sanitization happens here; rendering surfaces must sandbox it.
func (n *Normalizer) Document(kind event.DocumentKind, theme, raw string, now time.Time) (event.Document, error) {
	html := strings.TrimSpace(StripFences(raw))
	if html == "" {
		return event.Document{}, &event.MalformedOutputError{Reason: "AI returned an empty document", Raw: html}
	}
	if !strings.Contains(html, "<") || !strings.Contains(html, ">") {
		return event.Document{}, &event.MalformedOutputError{Reason: "AI output is not HTML", Raw: html}
	}
	return event.Document{
		Type:        kind,
		Theme:       theme,
		HTMLContent: html,
		CreatedAt:   now.UTC(),
	}, nil
}

// Post builds a social post. For email, a "SUBJECT:" marker is split off once:
// the rest of its line is the subject, everything after that line the body.
func (n *Normalizer) Post(platform event.Platform, raw string, now time.Time) event.Post {
	content := strings.TrimSpace(raw)
	p := event.Post{Platform: platform, CreatedAt: now.UTC()}

	if platform == event.PlatformEmail {
		if i := strings.Index(content, subjectMarker); i >= 0 {
			rest := content[i+len(subjectMarker):]
			subject, body := rest, ""
			if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
				subject, body = rest[:nl], rest[nl:]
			}
			if subject = strings.TrimSpace(subject); subject != "" {
				p.Subject = &subject
			}
			content = strings.TrimSpace(body)
		}
	}

	p.Content = content
	p.CharacterCount = utf8.RuneCountInString(content)
	p.Hashtags = Hashtags(content)
	return p
}

// StripFences removes Markdown code-fence markers (```json, ```html, ```) anywhere in s.
func StripFences(s string) string {
	return fenceRe.ReplaceAllString(s, "")
}

// Complexity coerces a model-supplied score to an integer in 1..100.
// Numbers are rounded and clamped, numeric strings parsed, and the words
// low/medium/high map to 25/50/75.
func Complexity(v any) int {
	switch x := v.(type) {
	case float64:
		return clamp(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return clamp(f)
		}
	case string:
		s := strings.TrimSpace(strings.ToLower(x))
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return clamp(f)
		}
		switch s {
		case "low", "easy", "simple":
			return 25
		case "medium", "moderate":
			return 50
		case "high", "hard", "complex":
			return 75
		}
	}
	return DefaultComplexity
}

func (n *Normalizer) task(raw json.RawMessage) (event.Task, bool) {
	var name string
	var complexity any

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		name = s
	} else {
		var rt rawTask
		if err := json.Unmarshal(raw, &rt); err != nil {
			return event.Task{}, false
		}
		for _, p := range []*string{rt.Task, rt.Title, rt.Name} {
			if p != nil {
				name = *p
				break
			}
		}
		complexity = rt.Complexity
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return event.Task{}, false
	}
	return event.Task{
		ID:         n.NewID(),
		Task:       name,
		Done:       false,
		Complexity: Complexity(complexity),
	}, true
}

func (n *Normalizer) node(rn rawNode) event.Node {
	id := stringify(rn.ID)
	if id == "" {
		id = dataID(rn.Data)
	}
	if id == "" {
		id = n.NewID()
	}
	typ := stringify(rn.Type)
	if typ == "" {
		typ = "default"
	}
	return event.Node{ID: id, Type: typ, Data: passthrough(rn.Data), Position: passthrough(rn.Position)}
}

// passthrough keeps editor-owned JSON as sent, dropping only an explicit null.
func passthrough(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		return nil
	}
	return raw
}

func dataID(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var d struct {
		ID any `json:"id"`
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return ""
	}
	return stringify(d.ID)
}

// decodeObject parses s as a JSON object, falling back to the first balanced
// {...} block when the model wrapped the JSON in prose.
func decodeObject(s string, v any) error {
	err := errors.New("no JSON object found")
	if strings.HasPrefix(s, "{") {
		if err = json.Unmarshal([]byte(s), v); err == nil {
			return nil
		}
	}
	block := extractJSONBlock(s)
	if block == "" || block == s {
		return err
	}
	if json.Unmarshal([]byte(block), v) != nil {
		return err
	}
	return nil
}

// extractJSONBlock finds the first balanced { ... } block in the text.
func extractJSONBlock(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(bytes.TrimSpace(b))
	}
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		s := strings.NewReplacer("$", "", ",", "", " ", "").Replace(x)
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

// clamp bounds before converting so huge scores cannot overflow int.
func clamp(f float64) int {
	switch {
	case math.IsNaN(f), f < 1:
		return 1
	case f > 100:
		return 100
	}
	return int(math.Round(f))
}
