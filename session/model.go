package session

import "github.com/athenaeum/authgate/label"

// Session binds an opaque handle to one authenticated identity together with
// the label set resolved at login time.
//
// Session values are created by the Engine at login and treated as immutable
// afterwards; a change of entitlements shows up in the next login's session,
// never in an existing one.
type Session struct {
	SessionID string
	Username  string
	Labels    label.Set

	CreatedAt int64
	ExpiresAt int64
}
