package event

import "strings"

// DocumentKind is a formatted document the generator can produce.
type DocumentKind string

const (
	DocumentInvitation DocumentKind = "invitation"
	DocumentItinerary  DocumentKind = "itinerary"
)

func ParseDocumentKind(s string) (DocumentKind, error) {
	switch k := DocumentKind(strings.TrimSpace(strings.ToLower(s))); k {
	case DocumentInvitation, DocumentItinerary:
		return k, nil
	}
	return "", Invalid("Invalid document type")
}

// Platform is a social or email destination with its own length and tone contract.
type Platform string

const (
	PlatformTwitter   Platform = "twitter"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformEmail     Platform = "email"
)

type PlatformSpec struct {
	CharLimit   int
	Description string
	Tone        string
}

var platformSpecs = map[Platform]PlatformSpec{
	PlatformTwitter: {
		CharLimit:   280,
		Description: "Short, concise with hashtags. Can include links.",
		Tone:        "Conversational, direct",
	},
	PlatformInstagram: {
		CharLimit:   2200,
		Description: "Visual-focused with hashtags (up to 30). Can be longer than Twitter.",
		Tone:        "Inspirational, descriptive",
	},
	PlatformFacebook: {
		CharLimit:   63206,
		Description: "Medium-length with optional hashtags. Can include links.",
		Tone:        "Engaging, informational",
	},
	PlatformLinkedIn: {
		CharLimit:   3000,
		Description: "Professional tone, industry-specific hashtags. Can include links.",
		Tone:        "Professional, thought leadership",
	},
	PlatformEmail: {
		CharLimit:   10000,
		Description: "Formal structure with subject line, greeting, body, and call to action.",
		Tone:        "Personal but professional, detailed",
	},
}

// Platforms lists the supported platforms in a stable order.
func Platforms() []Platform {
	return []Platform{PlatformTwitter, PlatformInstagram, PlatformFacebook, PlatformLinkedIn, PlatformEmail}
}

func (p Platform) Spec() (PlatformSpec, bool) {
	s, ok := platformSpecs[p]
	return s, ok
}

func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.TrimSpace(strings.ToLower(s)))
	if _, ok := platformSpecs[p]; !ok {
		return "", Invalid("Invalid platform specified")
	}
	return p, nil
}
