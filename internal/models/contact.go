package models

// Contact is a directory entry annotated with live presence.
type Contact struct {
	ID       int    `db:"id" json:"id"`
	Username string `db:"username" json:"username"`
	Online   bool   `db:"-" json:"online"`
}
