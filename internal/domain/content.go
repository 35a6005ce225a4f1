package domain

import (
	"time"

	"gorm.io/gorm"
)

// ContentStatus is the publication state shared by all content entities.
type ContentStatus string

const (
	ContentDraft     ContentStatus = "draft"
	ContentPublished ContentStatus = "published"
)

// TestimonialStatus is the moderation state of a testimonial. Legacy rows
// carry an empty status and are treated as approved on public listings.
type TestimonialStatus string

const (
	TestimonialPending  TestimonialStatus = "pending"
	TestimonialApproved TestimonialStatus = "approved"
	TestimonialRejected TestimonialStatus = "rejected"
)

// Project is a portfolio entry. Media URLs reference remote assets owned by
// the row: deleting the project, or replacing a media field, triggers
// best-effort remote cleanup of the orphaned assets.
//
// Invariant: a project tagged Residential never carries architectural plans;
// Plans is forced empty on create and update regardless of input.
type Project struct {
	ID          string        `json:"id"          gorm:"type:char(36);primaryKey"`
	Title       string        `json:"title"       gorm:"type:varchar(255);not null"`
	Slug        string        `json:"slug"        gorm:"type:varchar(255);not null;uniqueIndex"`
	Tag         string        `json:"tag"         gorm:"type:varchar(64);index"`
	Location    string        `json:"location"    gorm:"type:varchar(255)"`
	Year        int           `json:"year"`
	Description string        `json:"description" gorm:"type:text"`
	CoverImage  string        `json:"cover_image" gorm:"type:varchar(512)"`
	Gallery     StringList    `json:"gallery"     gorm:"type:text"`
	Plans       StringList    `json:"plans"       gorm:"type:text"`
	Status      ContentStatus `json:"status"      gorm:"type:varchar(16);not null;default:'draft';index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Project.
func (Project) TableName() string { return "projects" }

// TagResidential is the project tag that excludes plan attachments.
const TagResidential = "Residential"

// MediaURLs returns every remote asset URL owned by the project.
func (p *Project) MediaURLs() []string {
	urls := make([]string, 0, 1+len(p.Gallery)+len(p.Plans))
	if p.CoverImage != "" {
		urls = append(urls, p.CoverImage)
	}
	urls = append(urls, p.Gallery...)
	urls = append(urls, p.Plans...)
	return urls
}

// Blog is a long-form article.
type Blog struct {
	ID         string        `json:"id"          gorm:"type:char(36);primaryKey"`
	Title      string        `json:"title"       gorm:"type:varchar(255);not null"`
	Slug       string        `json:"slug"        gorm:"type:varchar(255);not null;uniqueIndex"`
	Author     string        `json:"author"      gorm:"type:varchar(128)"`
	Excerpt    string        `json:"excerpt"     gorm:"type:text"`
	Body       string        `json:"body"        gorm:"type:text"`
	CoverImage string        `json:"cover_image" gorm:"type:varchar(512)"`
	Tags       StringList    `json:"tags"        gorm:"type:text"`
	Status     ContentStatus `json:"status"      gorm:"type:varchar(16);not null;default:'draft';index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Blog.
func (Blog) TableName() string { return "blogs" }

// News is a short announcement.
type News struct {
	ID         string        `json:"id"          gorm:"type:char(36);primaryKey"`
	Title      string        `json:"title"       gorm:"type:varchar(255);not null"`
	Slug       string        `json:"slug"        gorm:"type:varchar(255);not null;uniqueIndex"`
	Body       string        `json:"body"        gorm:"type:text"`
	CoverImage string        `json:"cover_image" gorm:"type:varchar(512)"`
	Status     ContentStatus `json:"status"      gorm:"type:varchar(16);not null;default:'draft';index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for News.
func (News) TableName() string { return "news" }

// Testimonial is a client quote. Email is unique across all testimonials and
// phone number is unique when present; both are enforced at the database
// level and surfaced as conflicts by the service layer.
type Testimonial struct {
	ID          string            `json:"id"           gorm:"type:char(36);primaryKey"`
	Name        string            `json:"name"         gorm:"type:varchar(128);not null"`
	Email       string            `json:"email"        gorm:"type:varchar(255);not null;uniqueIndex"`
	PhoneNumber *string           `json:"phone_number,omitempty" gorm:"type:varchar(64);uniqueIndex"`
	Company     string            `json:"company"      gorm:"type:varchar(255)"`
	Quote       string            `json:"quote"        gorm:"type:text;not null"`
	Rating      int               `json:"rating"`
	Photo       string            `json:"photo"        gorm:"type:varchar(512)"`
	Status      TestimonialStatus `json:"status"       gorm:"type:varchar(16);index"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the database table name for Testimonial.
func (Testimonial) TableName() string { return "testimonials" }
