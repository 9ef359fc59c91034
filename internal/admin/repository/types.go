// Package repository provides the admin module's read-side queries:
// platform statistics and user search.
package repository

import (
	"time"

	"github.com/google/uuid"
)

// Stats is the admin dashboard snapshot.
type Stats struct {
	TotalUsers     int `json:"totalUsers"`
	TotalClients   int `json:"totalClients"`
	TotalProviders int `json:"totalProviders"`
	SuspendedUsers int `json:"suspendedUsers"`

	TotalRequests     int `json:"totalRequests"`
	OpenRequests      int `json:"openRequests"`
	CompletedRequests int `json:"completedRequests"`
	// CompletionRate is completed over total, 0 when no requests exist.
	CompletionRate float64 `json:"completionRate"`

	TotalQuotes  int `json:"totalQuotes"`
	TotalReviews int `json:"totalReviews"`

	SignupsByDay  []DayCount      `json:"signupsByDay"`
	RequestsByDay []DayCount      `json:"requestsByDay"`
	ByCategory    []CategoryCount `json:"byCategory"`
}

// DayCount is one histogram bucket.
type DayCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}

// CategoryCount is the request volume of one category.
type CategoryCount struct {
	CategorySlug string `json:"categorySlug"`
	Count        int    `json:"count"`
}

// UserListParams filters the admin user list.
type UserListParams struct {
	// Query is matched with full-text search over full name and email.
	Query string
	Role  string
	Limit int
}

// UserRow is one admin user-list entry.
type UserRow struct {
	ID          uuid.UUID `json:"id"`
	Role        string    `json:"role"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	Plan        string    `json:"plan"`
	IsAdmin     bool      `json:"isAdmin"`
	IsSuspended bool      `json:"isSuspended"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UsersOverview groups headline user counts for the admin user page.
type UsersOverview struct {
	Total       int `json:"total"`
	Clients     int `json:"clients"`
	Providers   int `json:"providers"`
	Admins      int `json:"admins"`
	Suspended   int `json:"suspended"`
	ProPlan     int `json:"proPlan"`
	NewThisWeek int `json:"newThisWeek"`
}
