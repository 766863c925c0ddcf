package service

import "time"

// TokenInspector reads metadata out of an access token without verifying it.
// The client has no signing secret; expiry is informational only and never a
// substitute for the server's auth decision.
type TokenInspector interface {
	Expiry(token string) (time.Time, error)
}
