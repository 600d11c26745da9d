// Package prompt assembles the instructions sent to the text-completion model.
// Builders never fail: absent event fields degrade to fixed placeholders.
package prompt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"eventplanner/internal/event"
)

const (
	placeholderNA           = "N/A"
	placeholderNone         = "None"
	placeholderNotSpecified = "Not specified"
	placeholderTBD          = "TBD"
)

const eventDataSchema = `{
  "eventSchedule": [ { "time": "10:00 AM", "activity": "Guest Arrival" } ],
  "budgetBreakdown": { "venue": 1000, "catering": 800, "decorations": 400 },
  "taskChecklist": [ { "task": "Book venue", "complexity": 70 } ],
  "eventFlowDiagram": {
    "nodes": [ { "id": "1", "type": "input", "data": { "label": "Guest Arrival" }, "position": { "x": 50, "y": 100 } } ],
    "edges": [ { "id": "e1-2", "source": "1", "target": "2" } ]
  }
}`

// EventData builds the core generation prompt: schedule, budget, checklist and flow diagram.
func EventData(ev event.Event) string {
	var b strings.Builder

	b.WriteString("You're an expert AI event planner. Based on the event details below, generate:\n\n")
	b.WriteString("1. A detailed event schedule as an array of objects, each with time and activity.\n")
	fmt.Fprintf(&b, "2. A budget breakdown that distributes within a total budget of $%s.\n", money(ev.Budget))
	b.WriteString("3. A task checklist of key planning tasks. For each task, assign a \"complexity\" score from 1 (very easy) to 100 (very complex).\n")
	b.WriteString("4. A simple event flow diagram for React Flow with nodes and edges.\n\n")

	b.WriteString("Event Details:\n")
	line(&b, "Title", text(ev.Title, placeholderNA))
	line(&b, "Type", text(ev.Type, placeholderNA))
	line(&b, "Date", text(ev.Date, placeholderNA))
	line(&b, "Duration", text(ev.Duration, placeholderNA))
	line(&b, "Location", text(ev.Location, placeholderNA))
	line(&b, "Guests", count(ev.Guests))
	line(&b, "Total Budget", "$"+money(ev.Budget))
	line(&b, "Description", text(ev.Description, placeholderNA))
	line(&b, "Theme", text(ev.Preferences.Theme, placeholderNA))
	line(&b, "Preferred Colors", list(ev.Preferences.Colors, placeholderNA))
	line(&b, "Preferred Activities", list(ev.Preferences.Activities, placeholderNA))
	line(&b, "Budget Priorities", list(ev.Preferences.BudgetPriority, placeholderNone))
	line(&b, "Preferred Vendor", text(ev.PreferredVendor, placeholderNone))

	b.WriteString("\nOutput JSON format (strictly match this):\n")
	b.WriteString(eventDataSchema)
	b.WriteString("\n\nIMPORTANT: Return only valid JSON. Do not include markdown formatting, explanations or any additional text.\n")
	return b.String()
}

// Document builds the prompt for an HTML invitation or itinerary. out may be nil.
func Document(kind event.DocumentKind, theme string, ev event.Event, out *event.Output) string {
	var b strings.Builder

	switch kind {
	case event.DocumentItinerary:
		b.WriteString("Generate a formal and detailed event itinerary for the following event:\n\n")
		b.WriteString("Event Details:\n")
		line(&b, "Title", text(ev.Title, placeholderNA))
		line(&b, "Type", text(ev.Type, placeholderNA))
		line(&b, "Date", text(ev.Date, placeholderNA))
		line(&b, "Location", text(ev.Location, placeholderNA))
		line(&b, "Schedule", schedule(out))
		b.WriteString("\nThe itinerary should include:\n")
		b.WriteString("1. A welcome message and introduction\n")
		b.WriteString("2. A detailed timeline of activities\n")
		b.WriteString("3. Important notes about locations, requirements, or special needs\n")
		b.WriteString("4. Contact information for key personnel\n")
		b.WriteString("5. A map or directional guidance if relevant\n")
	default:
		b.WriteString("Generate a formal event invitation for the following event:\n\n")
		b.WriteString("Event Details:\n")
		line(&b, "Title", text(ev.Title, placeholderNA))
		line(&b, "Type", text(ev.Type, placeholderNA))
		line(&b, "Date", text(ev.Date, placeholderNA))
		line(&b, "Time", text(out.StartTime(), placeholderTBD))
		line(&b, "Location", text(ev.Location, placeholderNA))
		line(&b, "Theme", text(ev.Preferences.Theme, placeholderNotSpecified))
		line(&b, "Colors", list(ev.Preferences.Colors, placeholderNotSpecified))
		b.WriteString("\nThe invitation should have the following components:\n")
		b.WriteString("1. A formal heading\n")
		b.WriteString("2. A warm welcome/introduction\n")
		b.WriteString("3. Clear details about date, time, and location\n")
		b.WriteString("4. RSVP information\n")
		b.WriteString("5. Any special instructions or dress code\n")
	}

	fmt.Fprintf(&b, "\nDesign Theme: %s\n\n", text(theme, placeholderNotSpecified))
	fmt.Fprintf(&b, "Return HTML markup that I can directly use for the %s. ", kindLabel(kind))
	b.WriteString("Make it visually appealing with CSS styling inline. Use elegant fonts, appropriate spacing, and a color scheme that matches the event theme and preferred colors.\n")
	b.WriteString(`Use placeholders for images using this format: <img src="/api/placeholder/WIDTH/HEIGHT" alt="DESCRIPTION" />`)
	b.WriteString("\n\nIMPORTANT: Include all styling inline. Make it suitable for printing or sending digitally. The HTML should be complete and ready to render in a browser.\n")
	return b.String()
}

// SocialPost builds the prompt for one platform. Unknown platforms get no
// constraint row; callers validate the platform first.
func SocialPost(platform event.Platform, ev event.Event, out *event.Output) string {
	spec, _ := platform.Spec()

	var b strings.Builder
	fmt.Fprintf(&b, "Generate a %s post for an event with the following details:\n\n", platform)
	b.WriteString("Event Details:\n")
	line(&b, "Title", text(ev.Title, placeholderNA))
	line(&b, "Type", text(ev.Type, placeholderNA))
	line(&b, "Date", text(ev.Date, placeholderNA))
	line(&b, "Time", text(out.StartTime(), placeholderTBD))
	line(&b, "Location", text(ev.Location, placeholderNA))
	line(&b, "Theme", text(ev.Preferences.Theme, placeholderNotSpecified))

	b.WriteString("\nIMPORTANT REQUIREMENTS:\n")
	fmt.Fprintf(&b, "1. Character limit: %d characters maximum\n", spec.CharLimit)
	fmt.Fprintf(&b, "2. Platform: %s (%s)\n", platform, spec.Description)
	fmt.Fprintf(&b, "3. Tone: %s\n", spec.Tone)
	b.WriteString("4. Include relevant hashtags appropriate for the platform\n")
	b.WriteString("5. Include a clear call to action\n")
	if platform == event.PlatformEmail {
		b.WriteString("6. Include a subject line\n")
	}

	b.WriteString("\nFor context, this is the event schedule:\n")
	b.WriteString(schedule(out))
	b.WriteString("\n\nReturn ONLY the post content, nothing else. No explanations or additional text.")
	if platform == event.PlatformEmail {
		b.WriteString(` For email, begin with the subject line prefixed by "SUBJECT:" on its own line, then the body.`)
	}
	b.WriteString("\n")
	return b.String()
}

func line(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}

func text(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

func list(items []string, placeholder string) string {
	kept := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			kept = append(kept, it)
		}
	}
	if len(kept) == 0 {
		return placeholder
	}
	return strings.Join(kept, ", ")
}

func count(n int) string {
	if n <= 0 {
		return placeholderNA
	}
	return strconv.Itoa(n)
}

// money renders a budget; zero is a real budget, only negatives are unknown.
func money(v float64) string {
	if v < 0 {
		return placeholderNA
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func schedule(out *event.Output) string {
	if out == nil || len(out.Schedule) == 0 {
		return "[]"
	}
	b, err := json.Marshal(out.Schedule)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func kindLabel(kind event.DocumentKind) string {
	if kind == "" {
		return "document"
	}
	return string(kind)
}
