// Package recommend turns user preferences and a weather reading into a
// pair of suggested activities via a generative text model.
package recommend

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Activity is one suggested activity.
type Activity struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Snapshot is the input to one generation: the preference tags to honor and
// a one-line weather summary.
type Snapshot struct {
	Preferences []string
	Weather     string
}

// Generator produces free-form text from a prompt. The production
// implementation calls OpenAI; tests substitute a stub.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// BuildPrompt renders the generation prompt for a snapshot. The model is
// instructed to answer in a fixed line-oriented format that ParseActivities
// understands.
func BuildPrompt(snap Snapshot) string {
	preferences := "no specific preferences"
	if len(snap.Preferences) > 0 {
		preferences = strings.Join(snap.Preferences, ", ")
	}

	return fmt.Sprintf(`Based on the following weather conditions and user preferences, suggest TWO different outdoor or indoor activities.

Weather: %s
User Preferences: %s

Please respond with ONLY the following format (no additional text):
Activity 1 Name: [name of first activity]
Activity 1 Description: [one sentence description]
Activity 2 Name: [name of second activity]
Activity 2 Description: [one sentence description]`, snap.Weather, preferences)
}

var activityLine = regexp.MustCompile(`^Activity (\d+) (Name|Description):\s*(.*)$`)

// ParseActivities extracts exactly two activities from model output in the
// prompt's line format. Any missing or empty field, or a third activity, is
// an error; the model occasionally ignores format instructions and we refuse
// to guess.
func ParseActivities(text string) ([2]Activity, error) {
	var out [2]Activity

	for line := range strings.Lines(text) {
		m := activityLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		number, field, value := m[1], m[2], strings.TrimSpace(m[3])
		var slot *Activity
		switch number {
		case "1":
			slot = &out[0]
		case "2":
			slot = &out[1]
		default:
			return out, fmt.Errorf("malformed model output: unexpected activity %s", number)
		}

		if field == "Name" {
			slot.Name = value
		} else {
			slot.Description = value
		}
	}

	for i := range out {
		if out[i].Name == "" || out[i].Description == "" {
			return out, fmt.Errorf("malformed model output: activity %d incomplete", i+1)
		}
	}

	return out, nil
}

// Generate runs one full generation round: build the prompt, call the
// generator, parse the result.
func Generate(ctx context.Context, g Generator, snap Snapshot) ([2]Activity, error) {
	text, err := g.Generate(ctx, BuildPrompt(snap))
	if err != nil {
		return [2]Activity{}, fmt.Errorf("generate activities: %w", err)
	}

	activities, err := ParseActivities(text)
	if err != nil {
		return [2]Activity{}, err
	}

	return activities, nil
}
