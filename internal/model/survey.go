package model

import "time"

const (
	SurveyTypeAssist = "ASSIST"
	SurveyTypeCrafft = "CRAFFT"
	SurveyTypeCustom = "CUSTOM"
)

type Survey struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"createDate"`
	UpdatedAt time.Time  `json:"updateDate"`
}

type Question struct {
	ID       int64    `json:"id"`
	Position int      `json:"-"`
	Content  string   `json:"content"`
	Answers  []Answer `json:"answers"`
}

type Answer struct {
	ID       int64  `json:"id"`
	Position int    `json:"-"`
	Content  string `json:"content"`
	Correct  bool   `json:"correct"`
	Score    int    `json:"score"`
}

type SurveyFilter struct {
	Keyword string
	Type    string
	Page    int
	Limit   int
}
