package models

type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// TrendDay holds at most one level per category for a calendar day.
// A nil value means nothing was logged for that category.
type TrendDay struct {
	Day    string          `json:"day"`
	Date   string          `json:"date"`
	ISO    string          `json:"iso"`
	Values map[string]*int `json:"values"`
}

type Trend struct {
	Period Period     `json:"period"`
	Start  string     `json:"start"`
	End    string     `json:"end"`
	Days   []TrendDay `json:"days"`
}
