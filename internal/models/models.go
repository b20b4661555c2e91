package models

import "time"

type Role string

const (
	RoleStudent   Role = "student"
	RoleRecruiter Role = "recruiter"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleRecruiter
}

// User is the stored credential record. PassHash and RefreshToken never
// leave the service; use Public for anything sent to clients.
type User struct {
	ID            string
	FullName      string
	Email         string
	PhoneNumber   string
	PassHash      []byte
	Role          Role
	AvatarURL     string
	CoverImageURL string
	RefreshToken  string
	CreatedAt     time.Time
}

// PublicUser is the identity attached to authenticated requests.
type PublicUser struct {
	ID            string    `json:"_id"`
	FullName      string    `json:"fullName"`
	Email         string    `json:"email"`
	PhoneNumber   string    `json:"phoneNumber"`
	Role          Role      `json:"role"`
	AvatarURL     string    `json:"avatar,omitempty"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		PhoneNumber:   u.PhoneNumber,
		Role:          u.Role,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
	}
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

const PurposePasswordReset = "password_reset"

// Message is the mail job published to the queue and consumed by mail_sender.
type Message struct {
	Email   string `json:"to"`
	Subject string `json:"subject"`
	Name    string `json:"name"`
	Link    string `json:"link"`
	Purpose string `json:"purpose"`
}
