package store

import "fmt"

// Owner identifies who a cart (or order) belongs to: a registered user or
// an anonymous session. It is a tagged variant — constructing one sets
// exactly one side, so the "both set" state cannot be expressed.
//
// The zero Owner means "nobody": reads against it return empty results,
// writes fail with ErrInvalidOwner.
type Owner struct {
	userID    uint
	sessionID string
}

// UserOwner returns the Owner for a registered user.
func UserOwner(id uint) Owner { return Owner{userID: id} }

// SessionOwner returns the Owner for an anonymous session.
func SessionOwner(sessionID string) Owner { return Owner{sessionID: sessionID} }

// UserID returns the user id and true when the owner is a registered user.
func (o Owner) UserID() (uint, bool) { return o.userID, o.userID != 0 }

// SessionID returns the session id and true when the owner is anonymous.
// A user-owned Owner never reports a session id.
func (o Owner) SessionID() (string, bool) {
	if o.userID != 0 {
		return "", false
	}
	return o.sessionID, o.sessionID != ""
}

// IsZero reports whether the owner identifies nobody.
func (o Owner) IsZero() bool { return o.userID == 0 && o.sessionID == "" }

func (o Owner) String() string {
	switch {
	case o.userID != 0:
		return fmt.Sprintf("user:%d", o.userID)
	case o.sessionID != "":
		return "session:" + o.sessionID
	default:
		return "nobody"
	}
}
