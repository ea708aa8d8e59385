package database

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"manhua-tracker/internal/entities"
)

type seedWork struct {
	title         string
	originalTitle string
	status        entities.WorkStatus
	coverURL      string
	synopsis      string
}

var sampleCatalog = []seedWork{
	{"Solo Leveling", "na honjaman level up", entities.WorkStatusCompleted,
		"https://m.media-amazon.com/images/I/81jS951SgDL._AC_UF1000,1000_QL80_.jpg",
		"Sung Jin-Woo, the weakest of hunters, gains the power to grow stronger without limit."},
	{"Omniscient Reader", "jeonjijeok dokja sijom", entities.WorkStatusOngoing,
		"https://cdn.myanimelist.net/images/manga/2/238873.jpg",
		"Kim Dok-Ja knows a novel by heart. When its story becomes reality, he has to survive it."},
	{"Bungou Stray Dogs", "bungou stray dogs", entities.WorkStatusOngoing,
		"https://cdn.myanimelist.net/images/anime/3/79409.jpg",
		"Atsushi Nakajima joins a detective agency of supernatural ability users to fight the mafia."},
	{"The Seven Deadly Sins", "nanatsu no taizai", entities.WorkStatusCompleted,
		"https://cdn.myanimelist.net/images/anime/8/65409.jpg",
		"The legendary fallen knights fight to free the kingdom of Liones from tyranny."},
	{"Demonic Emperor", "mo huang da di", entities.WorkStatusOngoing,
		"https://i.redd.it/73q2n8iikoaa1.jpg",
		"Betrayed, a demonic emperor is reborn in the body of a servant and seeks revenge."},
	{"Nano Machine", "nano machine", entities.WorkStatusOngoing,
		"https://cdn.myanimelist.net/images/manga/1/312579.jpg",
		"An orphan receives a nanomachine from the future, upending his fate in a martial world."},
	{"Shadow Slave", "shadow slave", entities.WorkStatusOngoing,
		"https://m.media-amazon.com/images/I/515fsT6ty4L._UF1000,1000_QL80_.jpg",
		"Sunny, a slave in a nightmarish world, fights to survive and uncover his past."},
	{"Tower of God", "kami no tou", entities.WorkStatusOngoing,
		"https://cdn.myanimelist.net/images/manga/2/223694.jpg",
		"Bam climbs the mysterious Tower to find his friend Rachel, facing deadly trials."},
	{"Blue Lock", "blue lock", entities.WorkStatusOngoing,
		"https://cdn.myanimelist.net/images/anime/1258/126929.jpg",
		"Young footballers compete in a ruthless training facility to become Japan's best striker."},
	{"Jujutsu Kaisen", "jujutsu kaisen", entities.WorkStatusOngoing,
		"https://cdn.myanimelist.net/images/anime/1171/109222.jpg",
		"Yuji Itadori joins a school of exorcists to fight cursed spirits and save his friends."},
	{"Lookism", "lookism", entities.WorkStatusOngoing,
		"https://cdn.myanimelist.net/images/manga/2/208866.jpg",
		"Park Hyung Suk wakes up each morning able to switch bodies, exploring looks-based inequality."},
	{"The Beginning After the End", "the beginning after the end", entities.WorkStatusOngoing,
		"https://a.storyblok.com/f/178900/1061x1500/b26eaae18f/the-beginning-after-the-end-key-visual.jpg/m/filters:quality(95)format(webp)",
		"A powerful king reincarnates in a new world of magic, seeking a second chance and peace."},
}

// seedDefaults inserts the default admin/reader accounts and the sample
// catalog when the users table is empty. Idempotent across restarts.
func (d *Database) seedDefaults(seed SeedPasswords) error {
	var count int64
	if err := d.DB.Model(&entities.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	cost := seed.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return d.DB.Transaction(func(tx *gorm.DB) error {
		admin, err := seedUser(tx, "admin", "admin@example.com", true, seed.Admin, cost)
		if err != nil {
			return err
		}
		if _, err := seedUser(tx, "reader", "reader@example.com", false, seed.Reader, cost); err != nil {
			return err
		}

		for _, w := range sampleCatalog {
			work := entities.Work{
				Title:         w.title,
				OriginalTitle: ptr(w.originalTitle),
				Status:        w.status,
				CoverURL:      ptr(w.coverURL),
				Synopsis:      ptr(w.synopsis),
				CreatedBy:     &admin.ID,
			}
			if err := tx.Create(&work).Error; err != nil {
				return fmt.Errorf("failed to seed work %q: %w", w.title, err)
			}
		}

		log.Printf("Seeded default accounts and %d catalog entries", len(sampleCatalog))
		return nil
	})
}

func seedUser(tx *gorm.DB, username, email string, isAdmin bool, password string, cost int) (*entities.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password for %s: %w", username, err)
	}
	user := entities.User{
		Username:     username,
		Email:        ptr(email),
		IsAdmin:      isAdmin,
		PasswordHash: ptr(string(hash)),
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to seed user %s: %w", username, err)
	}
	return &user, nil
}

func ptr[T any](v T) *T {
	return &v
}
