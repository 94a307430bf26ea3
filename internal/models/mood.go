package models

import (
	"encoding/json"
	"time"
)

// TimestampLayout is RFC 3339 in UTC with a fixed millisecond fraction.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// MoodEntry is one recorded mood observation. Entries are never mutated after creation.
type MoodEntry struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	MoodLevel int       `json:"moodLevel"`
	MoodEmoji string    `json:"moodEmoji,omitempty"`
	MoodLabel string    `json:"moodLabel,omitempty"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Timestamp time.Time `json:"timestamp"`
}

type entryFields MoodEntry

type entryWire struct {
	entryFields
	Timestamp string `json:"timestamp,omitempty"`
}

// MarshalJSON writes the timestamp with millisecond precision. Entries that
// were stored without a timestamp keep it absent instead of gaining year 1.
func (e MoodEntry) MarshalJSON() ([]byte, error) {
	w := entryWire{entryFields: entryFields(e)}
	if !e.Timestamp.IsZero() {
		w.Timestamp = e.Timestamp.UTC().Format(TimestampLayout)
	}
	return json.Marshal(w)
}

func (e *MoodEntry) UnmarshalJSON(data []byte) error {
	var w entryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*e = MoodEntry(w.entryFields)
	e.Timestamp = time.Time{}
	if w.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339Nano, w.Timestamp)
		if err != nil {
			return err
		}
		e.Timestamp = ts
	}
	return nil
}

// CreateMoodRequest is the payload accepted by POST /moods.
// MoodLevel is a pointer so that an explicit 0 can be told apart from a missing field.
type CreateMoodRequest struct {
	Type      string `json:"type"`
	MoodLevel *int   `json:"moodLevel"`
	MoodEmoji string `json:"moodEmoji,omitempty"`
	MoodLabel string `json:"moodLabel,omitempty"`
	Date      string `json:"date"`
	Time      string `json:"time"`
}

type MoodLevel struct {
	Level int    `json:"level"`
	Emoji string `json:"emoji"`
	Label string `json:"label"`
}

// MoodLevels is ordered from the best mood to the worst.
var MoodLevels = []MoodLevel{
	{Level: 5, Emoji: "😊", Label: "Happy"},
	{Level: 4, Emoji: "🙂", Label: "Content"},
	{Level: 3, Emoji: "😐", Label: "Neutral"},
	{Level: 2, Emoji: "😥", Label: "Stressed"},
	{Level: 1, Emoji: "😔", Label: "Sad"},
	{Level: 0, Emoji: "😡", Label: "Angry"},
}

func LookupLevel(level int) (MoodLevel, bool) {
	for _, l := range MoodLevels {
		if l.Level == level {
			return l, true
		}
	}
	return MoodLevel{}, false
}

type MoodType struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var MoodTypes = []MoodType{
	{ID: "daily", Label: "Daily Check-in", Color: "#10B981"},
	{ID: "meditation", Label: "After Meditation", Color: "#F59E0B"},
	{ID: "workout", Label: "After Workout", Color: "#06B6D4"},
}

// TypeLabel returns the display label of a category, or the raw tag for unknown ones.
func TypeLabel(typeID string) string {
	for _, t := range MoodTypes {
		if t.ID == typeID {
			return t.Label
		}
	}
	return typeID
}
