package domain

import (
	"context"
	"time"
)

// ShippingProfile is a user's default shipping details, one per authenticated
// identity. It prefills checkout and is upserted whenever an authenticated
// shopper submits the checkout form.
type ShippingProfile struct {
	UserID        string
	FullName      string
	Email         string
	PhoneNumber   string
	StreetAddress string
	StreetNumber  string
	City          string
	Province      string
	Country       string
	UpdatedAt     time.Time
}

// ProfileStore persists default shipping profiles.
type ProfileStore interface {
	// GetByUserID returns a user's profile, ENOTFOUND if none exists.
	GetByUserID(ctx context.Context, userID string) (*ShippingProfile, error)

	// Upsert inserts or replaces the profile for profile.UserID.
	Upsert(ctx context.Context, profile *ShippingProfile) (*ShippingProfile, error)
}
