package domain

type (
	UserId = int64
	ChatId = int64
	TaskId = string

	Phone        = string
	IntervalUnit = string
	LanguageTag  = string
)
