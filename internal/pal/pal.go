package pal

import "time"

// Traits are the five 0-100 personality dimensions.
type Traits struct {
	Extraversion      int `json:"extraversion"`
	Agreeableness     int `json:"agreeableness"`
	Openness          int `json:"openness"`
	Conscientiousness int `json:"conscientiousness"`
	Neuroticism       int `json:"neuroticism"`
}

// GeneratedProfile is the personality block produced by generation (or the
// deterministic default). Immutable once produced except via explicit edits
// in the review flow.
type GeneratedProfile struct {
	MBTI        string `json:"mbti"`
	Traits      Traits `json:"traits"`
	Backstory   string `json:"backstory"`
	Description string `json:"personality_description"`
}

// Pal is the persisted companion entity. Identity and timestamp fields are
// assigned by the record store.
type Pal struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Name           string    `json:"name"`
	AvatarURL      string    `json:"avatar_url"`
	FullBodyPhotos []string  `json:"full_body_photos"` // front, back, left, right; "" = absent
	MBTI           string    `json:"mbti"`
	Traits         Traits    `json:"traits"`
	Backstory      string    `json:"backstory"`
	Description    string    `json:"personality_description"`
	SystemPrompt   string    `json:"system_prompt"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// User is the application user row from the users table.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one chat message between the owner and a pal.
type Message struct {
	ID        string    `json:"id"`
	PalID     string    `json:"pal_id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Post is a feed entry authored by a pal.
type Post struct {
	ID            string    `json:"id"`
	PalID         string    `json:"pal_id"`
	Content       string    `json:"content"`
	ImageURL      string    `json:"image_url,omitempty"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	CreatedAt     time.Time `json:"created_at"`
}
