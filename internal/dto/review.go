package dto

import "time"

// Review holds one website-usability survey submission. Answers are on a 1..5 Likert scale.
type Review struct {
	ID         ID        `json:"id,omitempty"`
	Q1         int       `json:"q1"`
	Q2         int       `json:"q2"`
	Q3         int       `json:"q3"`
	Q4         int       `json:"q4"`
	Q5         int       `json:"q5"`
	Q6         int       `json:"q6"`
	Q7         int       `json:"q7"`
	Q8         int       `json:"q8"`
	Q9         int       `json:"q9"`
	Q10        int       `json:"q10"`
	Suggestion string    `json:"suggestion"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

// Scores returns the ten answers in question order.
func (r Review) Scores() [10]int {
	return [10]int{r.Q1, r.Q2, r.Q3, r.Q4, r.Q5, r.Q6, r.Q7, r.Q8, r.Q9, r.Q10}
}

type ReviewSummary struct {
	Count        int         `json:"count"`
	QuestionMean [10]float64 `json:"question_mean"`
	OverallMean  float64     `json:"overall_mean"`
}

type ReviewListResponse struct {
	Reviews []Review      `json:"reviews"`
	Summary ReviewSummary `json:"summary"`
}
