// Package prefs parses and resolves stored user preference specs.
//
// A stored spec is an opaque JSON string owned by the storage layer. Parsing
// is schema tolerant: missing or extra fields never fail, and every field
// resolves to a documented default so downstream rendering cannot fail on a
// well-formed spec. Only syntactically invalid JSON is an error.
package prefs

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tone values understood by the renderer. Unknown tones are kept verbatim
// (they appear as-is in the subject line and footer) and fall back to
// ToneProfessional wherever a known tone is required.
const (
	ToneProfessional = "professional"
	ToneCasual       = "casual"
	ToneTechnical    = "technical"
)

// Length values and their story counts.
const (
	LengthShort  = "short"
	LengthMedium = "medium"
	LengthLong   = "long"
)

// Spec is the resolved preference specification for one user.
type Spec struct {
	Topics          []string `json:"topics"`          // Interest keywords used for story filtering
	ExcludeTopics   []string `json:"excludeTopics"`   // Declared but not enforced, see DESIGN.md
	SendTime        string   `json:"sendTime"`        // HH:MM local send time for scheduled delivery
	Timezone        string   `json:"timezone"`        // IANA zone name for SendTime
	Frequency       string   `json:"frequency"`       // Delivery cadence, only "daily" is scheduled
	Tone            string   `json:"tone"`            // Voice of the newsletter
	Length          string   `json:"length"`          // short, medium, or long
	IncludeAnalysis bool     `json:"includeAnalysis"` // Adds a per-story explanatory sentence
}

// storedSpec mirrors the persisted JSON layout, where topic preferences live
// under a nested "preferences" object.
type storedSpec struct {
	Preferences struct {
		Topics        []string `json:"topics"`
		ExcludeTopics []string `json:"excludeTopics"`
		SendTime      string   `json:"sendTime"`
		Timezone      string   `json:"timezone"`
		Frequency     string   `json:"frequency"`
	} `json:"preferences"`
	Tone            string `json:"tone"`
	Length          string `json:"length"`
	IncludeAnalysis bool   `json:"includeAnalysis"`
}

// Default returns the spec applied to new users.
func Default() Spec {
	return Spec{
		Topics:          []string{"technology", "startups", "programming"},
		ExcludeTopics:   []string{},
		SendTime:        "09:00",
		Timezone:        "UTC",
		Frequency:       "daily",
		Tone:            ToneProfessional,
		Length:          LengthMedium,
		IncludeAnalysis: true,
	}
}

// Parse decodes a stored spec. It accepts either a JSON object or a
// double-encoded JSON string containing an object, since older records store
// the spec both ways. Invalid JSON is the only failure mode. Absent string
// fields fall back to the Default() values; absent topic lists stay empty
// and an absent includeAnalysis stays false.
func Parse(raw string) (Spec, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Default(), nil
	}

	// Double-encoded form: a JSON string whose content is the spec object.
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return Spec{}, fmt.Errorf("spec is not valid JSON: %w", err)
		}
		return Parse(inner)
	}

	var stored storedSpec
	if err := json.Unmarshal([]byte(trimmed), &stored); err != nil {
		return Spec{}, fmt.Errorf("spec is not valid JSON: %w", err)
	}

	spec := Spec{
		Topics:          stored.Preferences.Topics,
		ExcludeTopics:   stored.Preferences.ExcludeTopics,
		SendTime:        stored.Preferences.SendTime,
		Timezone:        stored.Preferences.Timezone,
		Frequency:       stored.Preferences.Frequency,
		Tone:            stored.Tone,
		Length:          stored.Length,
		IncludeAnalysis: stored.IncludeAnalysis,
	}
	spec.applyDefaults()
	return spec, nil
}

func (s *Spec) applyDefaults() {
	def := Default()
	if s.Topics == nil {
		s.Topics = []string{}
	}
	if s.ExcludeTopics == nil {
		s.ExcludeTopics = []string{}
	}
	if s.SendTime == "" {
		s.SendTime = def.SendTime
	}
	if s.Timezone == "" {
		s.Timezone = def.Timezone
	}
	if s.Frequency == "" {
		s.Frequency = def.Frequency
	}
	if s.Tone == "" {
		s.Tone = def.Tone
	}
	if s.Length == "" {
		s.Length = def.Length
	}
}

// Encode serializes a spec back to the persisted JSON layout.
func (s Spec) Encode() (string, error) {
	var stored storedSpec
	stored.Preferences.Topics = s.Topics
	stored.Preferences.ExcludeTopics = s.ExcludeTopics
	stored.Preferences.SendTime = s.SendTime
	stored.Preferences.Timezone = s.Timezone
	stored.Preferences.Frequency = s.Frequency
	stored.Tone = s.Tone
	stored.Length = s.Length
	stored.IncludeAnalysis = s.IncludeAnalysis

	b, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode spec: %w", err)
	}
	return string(b), nil
}

// StoryCount maps a length preference to the number of stories in an issue.
// Unknown lengths resolve to the medium count. This is the single mapping
// used by both the agent content path and the story-driven rendering path.
func StoryCount(length string) int {
	switch length {
	case LengthShort:
		return 3
	case LengthLong:
		return 7
	default:
		return 5
	}
}
