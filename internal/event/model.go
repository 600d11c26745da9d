package event

import (
	"strings"
	"time"

	"github.com/lib/pq"
)

// Event is the user-authored record describing what is being planned.
// It is written once on creation and never edited.
type Event struct {
	ID       string `gorm:"primaryKey;type:text" json:"id"`
	UserID   uint64 `gorm:"index;not null" json:"userId"`
	Title    string `gorm:"type:text;not null;default:''" json:"eventTitle"`
	Type     string `gorm:"type:text;not null;default:''" json:"eventType"`
	Date     string `gorm:"type:text;not null;default:''" json:"eventDate"`
	Duration string `gorm:"type:text;not null;default:''" json:"eventDuration"`
	Location string `gorm:"type:text;not null;default:''" json:"location"`
	Guests   int    `gorm:"not null;default:0" json:"numberOfGuests"`

	Budget      float64 `gorm:"not null;default:0" json:"budget"`
	Description string  `gorm:"type:text;not null;default:''" json:"description"`

	Preferences     Preferences `gorm:"embedded;embeddedPrefix:pref_" json:"preferences"`
	PreferredVendor string      `gorm:"type:text;not null;default:''" json:"preferredVendor"`

	CreatedAt time.Time `gorm:"index;not null;default:now()" json:"createdAt"`
}

type Preferences struct {
	Theme          string         `gorm:"type:text;not null;default:''" json:"theme"`
	Colors         pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"colors"`
	Activities     pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"activities"`
	BudgetPriority pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"budgetPriority"`
}

// Clone returns a copy that shares no slices with e.
func (e Event) Clone() Event {
	c := e
	c.Preferences.Colors = append(pq.StringArray(nil), e.Preferences.Colors...)
	c.Preferences.Activities = append(pq.StringArray(nil), e.Preferences.Activities...)
	c.Preferences.BudgetPriority = append(pq.StringArray(nil), e.Preferences.BudgetPriority...)
	return c
}

// Validate checks the fields the create form marks as required.
func (e *Event) Validate() error {
	for _, v := range []string{e.Title, e.Type, e.Date, e.Duration, e.Location} {
		if strings.TrimSpace(v) == "" {
			return Invalid("Missing required parameters")
		}
	}
	if e.Guests < 1 {
		return Invalid("numberOfGuests must be at least 1")
	}
	if e.Budget < 0 {
		return Invalid("budget must not be negative")
	}
	return nil
}
