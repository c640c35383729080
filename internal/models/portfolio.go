package models

import "time"

// PortfolioData is the whole site content, stored as one document.
type PortfolioData struct {
	Profile    Profile      `json:"profile"`
	Projects   []Project    `json:"projects" validate:"dive"`
	Skills     []Skill      `json:"skills" validate:"dive"`
	Experience []Experience `json:"experience" validate:"dive"`
	Memories   []Memory     `json:"memories" validate:"dive"`
	Notes      []Note       `json:"notes" validate:"dive"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

type Profile struct {
	Name      string            `json:"name" validate:"max=120"`
	Title     string            `json:"title" validate:"max=160"`
	Bio       string            `json:"bio" validate:"max=5000"`
	AvatarURL string            `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Location  string            `json:"location,omitempty"`
	Email     string            `json:"email,omitempty" validate:"omitempty,email"`
	Socials   map[string]string `json:"socials"` // e.g. {"github": "https://github.com/..."}
}

type Project struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title" validate:"required,max=160"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	URL         string   `json:"url,omitempty" validate:"omitempty,url"`
	RepoURL     string   `json:"repo_url,omitempty" validate:"omitempty,url"`
	ImageURL    string   `json:"image_url,omitempty"`
	Featured    bool     `json:"featured"`
}

type Skill struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required,max=80"`
	Category string `json:"category,omitempty"`
	Level    int    `json:"level" validate:"min=0,max=100"` // 0..100
}

type Experience struct {
	ID          string   `json:"id"`
	Company     string   `json:"company" validate:"required"`
	Role        string   `json:"role" validate:"required"`
	Start       string   `json:"start"`         // free-form, e.g. "2021-03"
	End         string   `json:"end,omitempty"` // empty means current
	Description string   `json:"description,omitempty"`
	Highlights  []string `json:"highlights"`
}

type Memory struct {
	ID          string `json:"id"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Date        string `json:"date,omitempty"`
}

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title" validate:"required"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
