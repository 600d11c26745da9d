package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"eventplanner/internal/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func seqNormalizer() *Normalizer {
	n := 0
	return &Normalizer{NewID: func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}}
}

const documentedExample = `{
  "eventSchedule": [ { "time": "10:00 AM", "activity": "Guest Arrival" }, { "time": "11:00 AM", "activity": "Keynote" } ],
  "budgetBreakdown": { "venue": 1000, "catering": 800, "decorations": 400.5 },
  "taskChecklist": [ { "task": "Book venue", "complexity": 70 }, { "task": "Send invites", "complexity": 15 } ],
  "eventFlowDiagram": {
    "nodes": [ { "id": "1", "type": "input", "data": { "label": "Arrival" }, "position": { "x": 50, "y": 100 } } ],
    "edges": [ { "id": "e1-2", "source": "1", "target": "2" } ]
  }
}`

func TestEventData_RoundTripsDocumentedSchema(t *testing.T) {
	out, err := seqNormalizer().EventData(documentedExample, testNow)
	require.NoError(t, err)

	assert.Equal(t, []event.ScheduleItem{
		{Time: "10:00 AM", Activity: "Guest Arrival"},
		{Time: "11:00 AM", Activity: "Keynote"},
	}, out.Schedule)
	assert.Equal(t, map[string]float64{"venue": 1000, "catering": 800, "decorations": 400.5}, out.Budget)

	require.Len(t, out.Tasks, 2)
	assert.Equal(t, event.Task{ID: "id-1", Task: "Book venue", Done: false, Complexity: 70}, out.Tasks[0])
	assert.Equal(t, event.Task{ID: "id-2", Task: "Send invites", Done: false, Complexity: 15}, out.Tasks[1])

	require.Len(t, out.FlowDiagram.Nodes, 1)
	node := out.FlowDiagram.Nodes[0]
	assert.Equal(t, "1", node.ID)
	assert.Equal(t, "input", node.Type)
	assert.JSONEq(t, `{"label":"Arrival"}`, string(node.Data))
	assert.JSONEq(t, `{"x":50,"y":100}`, string(node.Position))
	assert.Equal(t, []event.Edge{{ID: "e1-2", Source: "1", Target: "2"}}, out.FlowDiagram.Edges)

	assert.Equal(t, testNow, out.CreatedAt)
	assert.Empty(t, out.Documents)
	assert.Empty(t, out.Posts)
}

func TestEventData_TaskIDsAreFreshAndUnique(t *testing.T) {
	raw := `{"taskChecklist":[{"id":"model-id","task":"A","task_done":true},"B","C"]}`
	out, err := New().EventData(raw, testNow)
	require.NoError(t, err)

	require.Len(t, out.Tasks, 3)
	seen := map[string]bool{}
	for _, task := range out.Tasks {
		assert.NotEqual(t, "model-id", task.ID)
		assert.NotEmpty(t, task.ID)
		assert.False(t, task.Done)
		assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
}

func TestEventData_StripsCodeFences(t *testing.T) {
	raw := "```json\n{\"eventSchedule\":[{\"time\":\"9\",\"activity\":\"Doors\"}]}\n```"
	out, err := seqNormalizer().EventData(raw, testNow)
	require.NoError(t, err)
	assert.Equal(t, "Doors", out.Schedule[0].Activity)
}

func TestEventData_SurroundingProse(t *testing.T) {
	raw := "Here is your plan:\n{\"budgetBreakdown\":{\"venue\":\"$1,200\"}}\nEnjoy!"
	out, err := seqNormalizer().EventData(raw, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1200.0, out.Budget["venue"])
}

func TestEventData_Malformed(t *testing.T) {
	for _, raw := range []string{"not json", "null", "[1,2,3]", `{"eventSchedule": [`} {
		t.Run(raw, func(t *testing.T) {
			_, err := seqNormalizer().EventData(raw, testNow)
			require.Error(t, err)
			assert.ErrorIs(t, err, event.ErrMalformedOutput)

			var mErr *event.MalformedOutputError
			require.True(t, errors.As(err, &mErr))
			assert.Equal(t, raw, mErr.Raw)
		})
	}
}

func TestEventData_WrongFieldTypeIsMalformed(t *testing.T) {
	_, err := seqNormalizer().EventData(`{"taskChecklist":"Book venue"}`, testNow)
	assert.ErrorIs(t, err, event.ErrMalformedOutput)
}

func TestEventData_MissingFieldsDefaultToEmpty(t *testing.T) {
	out, err := seqNormalizer().EventData(`{"eventSchedule":[]}`, testNow)
	require.NoError(t, err)

	assert.NotNil(t, out.Tasks)
	assert.Empty(t, out.Tasks)
	assert.NotNil(t, out.Budget)
	assert.NotNil(t, out.FlowDiagram.Nodes)
	assert.NotNil(t, out.FlowDiagram.Edges)

	b, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"taskChecklist":[]`)
	assert.Contains(t, string(b), `"budgetBreakdown":{}`)
	assert.Contains(t, string(b), `"eventFlowDiagram":{"nodes":[],"edges":[]}`)
}

func TestEventData_BareStringTasks(t *testing.T) {
	out, err := seqNormalizer().EventData(`{"taskChecklist":["Book venue","  ",{"title":"Hire DJ"}]}`, testNow)
	require.NoError(t, err)

	require.Len(t, out.Tasks, 2)
	assert.Equal(t, "Book venue", out.Tasks[0].Task)
	assert.Equal(t, DefaultComplexity, out.Tasks[0].Complexity)
	assert.Equal(t, "Hire DJ", out.Tasks[1].Task)
}

func TestEventData_NodeIDFallbacks(t *testing.T) {
	raw := `{"eventFlowDiagram":{"nodes":[
		{"id":7,"data":{"label":"numeric"}},
		{"data":{"id":"from-data","label":"x"},"type":"output"},
		{"data":{"label":"none"}}
	],"edges":[{"id":1,"source":7,"target":"from-data"}]}}`

	out, err := seqNormalizer().EventData(raw, testNow)
	require.NoError(t, err)

	nodes := out.FlowDiagram.Nodes
	require.Len(t, nodes, 3)
	assert.Equal(t, "7", nodes[0].ID)
	assert.Equal(t, "default", nodes[0].Type)
	assert.Equal(t, "from-data", nodes[1].ID)
	assert.Equal(t, "output", nodes[1].Type)
	assert.Equal(t, "id-1", nodes[2].ID)
	assert.Nil(t, nodes[2].Position)

	assert.Equal(t, event.Edge{ID: "1", Source: "7", Target: "from-data"}, out.FlowDiagram.Edges[0])
}

func TestEventData_FlowDiagramPassesThroughLooseTypes(t *testing.T) {
	raw := `{"eventFlowDiagram":{
		"nodes":[{"id":"1","type":3,"data":{"label":"Start"},"position":{"x":"50","y":100}},{"id":"2","position":null}],
		"edges":[{"id":"e1","source":"1","target":"2","label":7,"type":true}]}}`

	out, err := seqNormalizer().EventData(raw, testNow)
	require.NoError(t, err)

	nodes := out.FlowDiagram.Nodes
	require.Len(t, nodes, 2)
	assert.Equal(t, "3", nodes[0].Type)
	assert.JSONEq(t, `{"x":"50","y":100}`, string(nodes[0].Position))
	assert.Nil(t, nodes[1].Position)
	assert.Equal(t, event.Edge{ID: "e1", Source: "1", Target: "2", Label: "7", Type: "true"}, out.FlowDiagram.Edges[0])

	b, err := json.Marshal(out.FlowDiagram)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"position":{"x":"50","y":100}`)
}

func TestComplexity(t *testing.T) {
	tests := []struct {
		in   any
		want int
	}{
		{nil, 50},
		{float64(42), 42},
		{42.6, 43},
		{float64(0), 1},
		{float64(250), 100},
		{1e20, 100},
		{-1e20, 1},
		{"1e20", 100},
		{"80", 80},
		{"medium", 50},
		{"Low", 25},
		{"HIGH", 75},
		{"whatever", 50},
		{true, 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Complexity(tt.in), "input %v", tt.in)
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "\n<p>x</p>\n", StripFences("```html\n<p>x</p>\n```"))
	assert.Equal(t, "a b", StripFences("a```json b```"))
}

func TestDocument(t *testing.T) {
	doc, err := seqNormalizer().Document(event.DocumentInvitation, "elegant", "```html\n<html><body>Hi</body></html>\n```", testNow)
	require.NoError(t, err)

	assert.Equal(t, event.DocumentInvitation, doc.Type)
	assert.Equal(t, "elegant", doc.Theme)
	assert.Equal(t, "<html><body>Hi</body></html>", doc.HTMLContent)
	assert.Equal(t, testNow, doc.CreatedAt)
}

func TestDocument_KeepsMarkupVerbatim(t *testing.T) {
	html := `<div onclick="alert(1)"><script>x()</script></div>`
	doc, err := seqNormalizer().Document(event.DocumentItinerary, "t", html, testNow)
	require.NoError(t, err)
	assert.Equal(t, html, doc.HTMLContent)
}

func TestDocument_Rejected(t *testing.T) {
	for _, raw := range []string{"", "   ", "```html\n```", "just some words"} {
		_, err := seqNormalizer().Document(event.DocumentInvitation, "t", raw, testNow)
		assert.ErrorIs(t, err, event.ErrMalformedOutput, "raw %q", raw)
	}
}

func TestDocument_RawOutputIsFenceStripped(t *testing.T) {
	_, err := seqNormalizer().Document(event.DocumentInvitation, "t", "```html\nno markup here\n```", testNow)

	var mErr *event.MalformedOutputError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, "no markup here", mErr.Raw)

	_, err = seqNormalizer().EventData("```json\nnot json\n```", testNow)
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, "not json", mErr.Raw)
}

func TestPost_EmailSubjectSplit(t *testing.T) {
	p := seqNormalizer().Post(event.PlatformEmail, "SUBJECT: Party Time\nCome one come all", testNow)

	require.NotNil(t, p.Subject)
	assert.Equal(t, "Party Time", *p.Subject)
	assert.Equal(t, "Come one come all", p.Content)
	assert.Equal(t, len("Come one come all"), p.CharacterCount)
	assert.Equal(t, event.PlatformEmail, p.Platform)
}

func TestPost_EmailSplitsOnlyOnce(t *testing.T) {
	p := seqNormalizer().Post(event.PlatformEmail, "SUBJECT: One\nBody mentions SUBJECT: two\nend", testNow)

	require.NotNil(t, p.Subject)
	assert.Equal(t, "One", *p.Subject)
	assert.Equal(t, "Body mentions SUBJECT: two\nend", p.Content)
}

func TestPost_EmailWithoutMarker(t *testing.T) {
	p := seqNormalizer().Post(event.PlatformEmail, "Dear guest,\nsee you there", testNow)
	assert.Nil(t, p.Subject)
	assert.Equal(t, "Dear guest,\nsee you there", p.Content)
}

func TestPost_EmailSubjectOnly(t *testing.T) {
	p := seqNormalizer().Post(event.PlatformEmail, "SUBJECT: Save the date", testNow)
	require.NotNil(t, p.Subject)
	assert.Equal(t, "Save the date", *p.Subject)
	assert.Equal(t, "", p.Content)
	assert.Equal(t, 0, p.CharacterCount)
}

func TestPost_NonEmailKeepsMarker(t *testing.T) {
	p := seqNormalizer().Post(event.PlatformTwitter, "SUBJECT: hi\nthere #party 🎉", testNow)
	assert.Nil(t, p.Subject)
	assert.Equal(t, "SUBJECT: hi\nthere #party 🎉", p.Content)
	assert.Equal(t, 26, p.CharacterCount)
}

func TestHashtags(t *testing.T) {
	assert.Nil(t, Hashtags("no tags here"))
	assert.Equal(t, []string{"gala", "lisboa2026", "fête"}, Hashtags("#Gala night #lisboa2026 #GALA #Fête!"))

	many := ""
	for i := 0; i < 40; i++ {
		many += fmt.Sprintf("#t%d ", i)
	}
	assert.Len(t, Hashtags(many), MaxHashtags)
}

func TestPost_CollectsHashtags(t *testing.T) {
	p := seqNormalizer().Post(event.PlatformInstagram, "Join us! #SpringGala #Lisbon", testNow)
	assert.Equal(t, []string{"springgala", "lisbon"}, p.Hashtags)
}
