package view

import (
	"fmt"
	"time"
)

const (
	minute = 60
	hour   = 60 * minute
	day    = 24 * hour
)

// FormatTimeAgo renders a past instant relative to now. A nil instant means
// the task never ran.
func FormatTimeAgo(c Catalog, at *time.Time, now time.Time) string {
	if at == nil {
		return c.T("not_executed_yet")
	}
	diff := int64(now.Sub(*at) / time.Second)

	if c.Lang() == LangRussian {
		switch {
		case diff < minute:
			return c.T("just_now")
		case diff < hour:
			return fmt.Sprintf("%d м. назад", diff/minute)
		case diff < day:
			return fmt.Sprintf("%d ч. назад", diff/hour)
		}
		return fmt.Sprintf("%d д. назад", diff/day)
	}

	switch {
	case diff < minute:
		return c.T("just_now")
	case diff < hour:
		return fmt.Sprintf("%dm ago", diff/minute)
	case diff < day:
		return fmt.Sprintf("%dh ago", diff/hour)
	}
	return fmt.Sprintf("%dd ago", diff/day)
}

// FormatNextRun renders a future instant relative to now.
func FormatNextRun(c Catalog, at *time.Time, now time.Time) string {
	if at == nil {
		return ""
	}
	diff := int64(at.Sub(now) / time.Second)

	if diff < 0 {
		switch {
		case diff < -day:
			return fmt.Sprintf("%s %dd", c.T("overdue_by"), -diff/day)
		case diff < -hour:
			return fmt.Sprintf("%s %dh", c.T("overdue_by"), -diff/hour)
		}
		return c.T("overdue")
	}

	in := c.T("in_time")
	switch {
	case diff < minute:
		return c.T("very_soon")
	case diff < hour:
		return fmt.Sprintf("%s %dm", in, diff/minute)
	case diff < day:
		return fmt.Sprintf("%s %dh", in, diff/hour)
	}
	return fmt.Sprintf("%s %dd", in, diff/day)
}

// truncate cuts s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
