// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"koinonia/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db  *gorm.DB
	rnd *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:  db,
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

var postCategories = []string{
	models.DefaultPostCategory, "prayer", "testimony", "youth", "worship",
}

// CreateProfile persists a member profile with a known password ("Password123!").
func (f *Factory) CreateProfile(role models.Role) (*models.Profile, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123!"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		Email:        gofakeit.Email(),
		DisplayName:  gofakeit.Name(),
		Password:     string(hashed),
		Role:         role,
		MemberStatus: models.MemberStatusActive,
		AvatarURL:    fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID()),
	}
	if err := f.db.Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

// BuildPost constructs a post without persisting it. Useful for batching.
func (f *Factory) BuildPost(author *models.Profile) *models.Post {
	post := &models.Post{
		Title:    gofakeit.Sentence(4),
		Content:  gofakeit.Paragraph(1, 3, 5, "\n"),
		Category: postCategories[f.rnd.Intn(len(postCategories))],
		AuthorID: author.ID,
		Visible:  true,
	}

	// realistic created_at spread over the last 90 days
	daysBack := f.rnd.Intn(90)
	hoursBack := f.rnd.Intn(24)
	post.CreatedAt = time.Now().
		Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	if f.rnd.Intn(3) == 0 {
		post.MediaURLs = []string{
			fmt.Sprintf("https://picsum.photos/seed/%s/800/600", gofakeit.UUID()),
		}
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.CreateInBatches(posts, 100).Error
}

// CreateComment persists a comment on the given post.
func (f *Factory) CreateComment(post *models.Post, author *models.Profile) (*models.Comment, error) {
	comment := &models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Content:  gofakeit.Sentence(f.rnd.Intn(12) + 3),
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like; duplicates are skipped by the unique index.
func (f *Factory) CreateLike(post *models.Post, member *models.Profile) error {
	like := &models.Like{PostID: post.ID, UserID: member.ID}
	return f.db.Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error
}

// CreateAnnouncement persists a published announcement authored by admin.
func (f *Factory) CreateAnnouncement(admin *models.Profile) (*models.Announcement, error) {
	announcement := &models.Announcement{
		Title:     gofakeit.Sentence(3),
		Body:      gofakeit.Paragraph(1, 2, 6, "\n"),
		AuthorID:  admin.ID,
		Published: f.rnd.Intn(5) != 0,
	}
	if err := f.db.Create(announcement).Error; err != nil {
		return nil, err
	}
	return announcement, nil
}

// CreateEvent persists an upcoming event created by admin.
func (f *Factory) CreateEvent(admin *models.Profile) (*models.Event, error) {
	start := time.Now().Add(time.Duration(f.rnd.Intn(30)+1) * 24 * time.Hour)
	end := start.Add(2 * time.Hour)

	event := &models.Event{
		Title:       gofakeit.Sentence(3),
		Description: gofakeit.Paragraph(1, 2, 5, "\n"),
		Location:    gofakeit.City(),
		StartsAt:    start,
		EndsAt:      &end,
		CreatedByID: admin.ID,
	}
	if err := f.db.Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

// weeklyGuide is a fixed realistic radio schedule seeded as-is.
var weeklyGuide = []models.RadioProgram{
	{Title: "Morning Devotional", Host: "Pr. Silva", Weekday: time.Monday, StartTime: "06:00", EndTime: "07:00"},
	{Title: "Hymns of Praise", Host: "Ana Costa", Weekday: time.Monday, StartTime: "07:00", EndTime: "09:00"},
	{Title: "Midweek Bible Study", Host: "Pr. Silva", Weekday: time.Wednesday, StartTime: "19:00", EndTime: "20:30"},
	{Title: "Youth Hour", Host: "Tiago Mendes", Weekday: time.Friday, StartTime: "20:00", EndTime: "21:00"},
	{Title: "Overnight Worship", Host: "Equipe Louvor", Weekday: time.Saturday, StartTime: "23:00", EndTime: "02:00"},
	{Title: "Sunday Service Live", Host: "Pr. Silva", Weekday: time.Sunday, StartTime: "10:00", EndTime: "12:00"},
}

// CreateRadioGuide persists the fixed weekly program guide.
func (f *Factory) CreateRadioGuide() error {
	for i := range weeklyGuide {
		program := weeklyGuide[i]
		if err := f.db.Create(&program).Error; err != nil {
			return err
		}
	}
	return nil
}
