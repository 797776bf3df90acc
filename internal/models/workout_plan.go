package models

import "time"

type WorkoutPlan struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	FileURL      string    `json:"file_url"`
	AssignedTo   int64     `json:"assigned_to"`
	AssignedBy   int64     `json:"assigned_by"`
	AssignedDate time.Time `json:"assigned_date"`
}

type WorkoutPlanDetail struct {
	WorkoutPlan
	Assignee MemberSummary `json:"assignee"`
	Assigner MemberSummary `json:"assigner"`
}

type DashboardStats struct {
	MembersCount int64 `json:"membersCount"`
	ClassesCount int64 `json:"classesCount"`
	PlansCount   int64 `json:"plansCount"`
}
