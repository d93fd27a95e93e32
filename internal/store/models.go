// Package store provides the SQLite-backed school cache.
package store

import "time"

// School is one entry of the NYC high school directory.
type School struct {
	DBN            string
	Name           string
	Borough        string
	Neighborhood   string
	Address        string
	City           string
	Zip            string
	Phone          string
	Email          string
	Website        string
	Overview       string
	TotalStudents  int
	GraduationRate string
	AttendanceRate string
	UpdatedAt      string
	SAT            *SATScore
}

// SATScore holds the published SAT averages for a school.
type SATScore struct {
	DBN        string
	TestTakers int
	ReadingAvg int
	MathAvg    int
	WritingAvg int
}

// Filter narrows ListSchools. Empty fields do not constrain the result.
type Filter struct {
	Boroughs          []string
	Neighborhood      string
	MinGraduationRate *float64
}

// BoroughCount is a borough name with the number of cached schools in it.
type BoroughCount struct {
	Borough string
	Schools int
}

// FetchStatus is the outcome of one download cycle.
type FetchStatus string

// Fetch outcomes recorded in the history table.
const (
	FetchOK      FetchStatus = "ok"
	FetchPartial FetchStatus = "partial"
	FetchFailed  FetchStatus = "failed"
)

// FetchRecord is one row of the download history.
type FetchRecord struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Source     string
	Schools    int
	SATScores  int
	Status     FetchStatus
	Error      string
}
