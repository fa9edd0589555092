package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a platform account. Trading identity is just the opaque id; the
// rest of the profile lives outside the settlement core.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
