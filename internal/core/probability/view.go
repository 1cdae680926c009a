package probability

import "math"

// Snapshot is the read-only view handed to the presentation layer.
type Snapshot struct {
	Displayed int        `json:"displayed"`
	Target    int        `json:"target"`
	Baseline  int        `json:"baseline"`
	LastDelta *int       `json:"last_delta"`
	Rating    string     `json:"rating"`
	Tone      string     `json:"tone"`
	Items     []ItemView `json:"items"`
}

type ItemView struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Present      bool   `json:"present"`
	Importance   string `json:"importance"`
	Impact       string `json:"impact_if_added"`
	WhyItMatters string `json:"why_it_matters"`
	Weight       int    `json:"weight"`
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	displayed := int(math.Floor(e.displayed))
	s := Snapshot{
		Displayed: displayed,
		Target:    e.target,
		Baseline:  e.baseline,
		Rating:    Rating(displayed),
		Tone:      Tone(displayed),
		Items:     make([]ItemView, 0, len(e.items)),
	}
	if e.lastDelta != nil {
		d := *e.lastDelta
		s.LastDelta = &d
	}
	for _, it := range e.items {
		s.Items = append(s.Items, ItemView{
			ID:           it.ID,
			Label:        it.Label,
			Present:      it.Present,
			Importance:   it.Importance,
			Impact:       it.Impact,
			WhyItMatters: it.WhyItMatters,
			Weight:       it.Weight,
		})
	}
	return s
}

// Rating is the gauge caption for a probability.
func Rating(value int) string {
	switch {
	case value > 80:
		return "Excellent"
	case value > 50:
		return "Moderate"
	default:
		return "Critical"
	}
}

// Tone is the gauge colour band for a probability.
func Tone(value int) string {
	switch {
	case value > 84:
		return "green"
	case value > 60:
		return "yellow"
	default:
		return "red"
	}
}
