package models

import "time"

// Activity action labels recorded in the audit trail.
const (
	ActivityActionLogin   = "login"
	ActivityActionLogout  = "logout"
	ActivityActionCreate  = "create"
	ActivityActionUpdate  = "update"
	ActivityActionDelete  = "delete"
	ActivityActionArchive = "archive"
)

// ActivityLog is an append-only audit trail entry for a user-initiated
// mutation. Entries are never updated or deleted by the application.
type ActivityLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Action     string    `db:"action" json:"action"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   string    `db:"entity_id" json:"entity_id"`
	Details    string    `db:"details" json:"details"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ActivityLogRecord joins the actor's name for the log viewer.
type ActivityLogRecord struct {
	ActivityLog
	ActorName string `db:"actor_name" json:"actor_name"`
}

// ActivityLogFilter narrows the audit trail listing.
type ActivityLogFilter struct {
	UserID     string
	Action     string
	EntityType string
	Limit      int
}
