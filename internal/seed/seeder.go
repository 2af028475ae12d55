package seed

import (
	"fmt"
	"log"

	"koinonia/internal/models"

	"gorm.io/gorm"
)

// Seeder populates the database with a realistic community.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder for the given database.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll removes all seeded data. Order matters because of foreign keys.
func (s *Seeder) ClearAll() error {
	tables := []string{
		"community_likes",
		"post_comments",
		"community_posts",
		"announcements",
		"events",
		"radio_programs",
		"contact_messages",
		"profiles",
	}
	for _, table := range tables {
		if err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	log.Println("database cleared")
	return nil
}

// SeedCommunity creates members, an admin, posts with comments and likes,
// announcements, events and the radio guide.
func (s *Seeder) SeedCommunity(numMembers, numPosts int) error {
	admin, err := s.factory.CreateProfile(models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	members := make([]*models.Profile, 0, numMembers)
	for i := 0; i < numMembers; i++ {
		member, err := s.factory.CreateProfile(models.RoleMember)
		if err != nil {
			return fmt.Errorf("create member: %w", err)
		}
		members = append(members, member)
	}
	log.Printf("created %d members (+1 admin, login via seeded email / Password123!)", numMembers)

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := members[s.factory.rnd.Intn(len(members))]
		posts = append(posts, s.factory.BuildPost(author))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	log.Printf("created %d posts", numPosts)

	comments, likes := 0, 0
	for _, post := range posts {
		for i := s.factory.rnd.Intn(5); i > 0; i-- {
			author := members[s.factory.rnd.Intn(len(members))]
			if _, err := s.factory.CreateComment(post, author); err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
			comments++
		}
		for i := s.factory.rnd.Intn(8); i > 0; i-- {
			member := members[s.factory.rnd.Intn(len(members))]
			if err := s.factory.CreateLike(post, member); err != nil {
				return fmt.Errorf("create like: %w", err)
			}
			likes++
		}
	}
	log.Printf("created %d comments and %d likes", comments, likes)

	for i := 0; i < 5; i++ {
		if _, err := s.factory.CreateAnnouncement(admin); err != nil {
			return fmt.Errorf("create announcement: %w", err)
		}
	}
	for i := 0; i < 8; i++ {
		if _, err := s.factory.CreateEvent(admin); err != nil {
			return fmt.Errorf("create event: %w", err)
		}
	}
	if err := s.factory.CreateRadioGuide(); err != nil {
		return fmt.Errorf("create radio guide: %w", err)
	}
	log.Println("created announcements, events and radio guide")

	return nil
}
