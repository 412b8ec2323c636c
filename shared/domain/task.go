package domain

import "time"

type TaskStatus string

const (
	TaskActive   TaskStatus = "active"
	TaskPaused   TaskStatus = "paused"
	TaskArchived TaskStatus = "archived"
)

const (
	UnitMinutes IntervalUnit = "minutes"
	UnitHours   IntervalUnit = "hours"
	UnitDays    IntervalUnit = "days"
	UnitWeeks   IntervalUnit = "weeks"
)

// IntervalUnits lists the units the scheduler accepts, in display order.
var IntervalUnits = []IntervalUnit{UnitMinutes, UnitHours, UnitDays, UnitWeeks}

// Task is the server-owned summary of a recurring message. The client never
// mutates it; every change is a round-trip followed by a fresh fetch.
type Task struct {
	Id             TaskId       `json:"id"`
	Name           string       `json:"name,omitempty"`
	Message        string       `json:"message"`
	IntervalValue  int          `json:"interval_value"`
	IntervalUnit   IntervalUnit `json:"interval_unit"`
	ChatIds        []ChatId     `json:"chat_ids"`
	Status         TaskStatus   `json:"status"`
	LastRun        *time.Time   `json:"last_run,omitempty"`
	NextRun        *time.Time   `json:"next_run,omitempty"`
	ExecutionCount int          `json:"execution_count"`
	FileCount      int          `json:"files"`
	FileURLs       []string     `json:"file_urls,omitempty"`
}
