package models

import "time"

type Class struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	Schedule        time.Time `json:"schedule"`
	DurationMinutes int       `json:"duration_minutes"`
	Capacity        int       `json:"capacity"`
	Instructor      string    `json:"instructor"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ClassWithMembers struct {
	Class
	EnrolledMembers []MemberSummary `json:"enrolled_members"`
}

type ClassAvailability struct {
	Class
	EnrolledCount int `json:"enrolled_count"`
}
