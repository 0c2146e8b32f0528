package model

import "time"

const (
	ProgramStatusUpcoming  = "UPCOMING"
	ProgramStatusOngoing   = "ONGOING"
	ProgramStatusFinished  = "FINISHED"
	ProgramStatusCancelled = "CANCELLED"
)

// Program is a community event users can register for. Date is
// YYYY-MM-DD and Time is HH:MM.
type Program struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Image       string    `json:"image"`
	Address     string    `json:"address"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Status      string    `json:"status"`
	Capacity    int       `json:"capacity"`
	Registered  int       `json:"registered"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createDate"`
	UpdatedAt   time.Time `json:"updateDate"`
}

type ProgramRegistration struct {
	ProgramID    int64     `json:"programId"`
	UserID       int64     `json:"userId"`
	RegisteredAt time.Time `json:"registeredAt"`
}

type ProgramStatistics struct {
	CntProgram  int64 `json:"cntProgram"`
	CntRegister int64 `json:"cntRegister"`
}

type ProgramFilter struct {
	Keyword string
	Status  string
	Page    int
	Limit   int
}
