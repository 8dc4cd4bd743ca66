package model

import (
	"fmt"
	"strconv"
	"strings"
)

type AppStatus struct {
	ID                int        `json:"id,omitempty"`
	Status            string     `json:"status"`
	LastRunTime       *Timestamp `json:"last_run_time"`
	NextRunTime       *Timestamp `json:"next_run_time"`
	APICallsThisMonth int        `json:"api_calls_this_month"`
}

type ActivityLevel string

const (
	ActivitySuccess ActivityLevel = "success"
	ActivityError   ActivityLevel = "error"
	ActivityWarning ActivityLevel = "warning"
	ActivityInfo    ActivityLevel = "info"
)

// Normalize maps unknown levels to ActivityInfo.
func (l ActivityLevel) Normalize() ActivityLevel {
	switch ActivityLevel(strings.ToLower(strings.TrimSpace(string(l)))) {
	case ActivitySuccess:
		return ActivitySuccess
	case ActivityError:
		return ActivityError
	case ActivityWarning:
		return ActivityWarning
	default:
		return ActivityInfo
	}
}

type Activity struct {
	ID        int           `json:"id,omitempty"`
	Timestamp Timestamp     `json:"timestamp"`
	TopicID   *TopicID      `json:"topic_id,omitempty"`
	TopicName *string       `json:"topic_name,omitempty"`
	Status    ActivityLevel `json:"status"`
	Message   string        `json:"message"`
}

type StatusSnapshot struct {
	Status         AppStatus  `json:"status"`
	RecentActivity []Activity `json:"recent_activity"`
}

type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

var Frequencies = []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly}

func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Frequencies {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid frequency %q (expected daily|weekly|monthly)", s)
}

// Next cycles through the known frequencies; unknown values restart at daily.
func (f Frequency) Next() Frequency {
	for i, known := range Frequencies {
		if f == known {
			return Frequencies[(i+1)%len(Frequencies)]
		}
	}
	return FrequencyDaily
}

type Schedule struct {
	ID                 int       `json:"id,omitempty"`
	Frequency          Frequency `json:"frequency"`
	TimeOfDay          string    `json:"time_of_day"`
	EmailNotifications bool      `json:"email_notifications"`
}

func DefaultSchedule() Schedule {
	return Schedule{Frequency: FrequencyDaily, TimeOfDay: "09:00"}
}

// ParseTimeOfDay accepts H:MM or HH:MM and returns the zero-padded form.
func ParseTimeOfDay(s string) (string, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 {
		return "", fmt.Errorf("invalid time of day %q (expected HH:MM)", s)
	}
	h, herr := strconv.Atoi(hh)
	m, merr := strconv.Atoi(mm)
	if herr != nil || merr != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return "", fmt.Errorf("invalid time of day %q (expected HH:MM)", s)
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}
