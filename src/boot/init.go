package boot

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"
	"vrbs/src/common"
	"vrbs/src/db"
	"vrbs/src/lib"
	"vrbs/src/models"

	"github.com/go-co-op/gocron/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Property{},
		&models.PropertyImage{},
		&models.Booking{},
		&models.BlockedDate{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	// Overlapping active bookings are rejected by the database itself, so
	// two requests racing past the availability check cannot both commit.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		log.Printf("Error creating btree_gist extension: %s\n", err.Error())
	}
	if err := db.Exec(`
	DO $$ BEGIN
		ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
		EXCLUDE USING gist (
			property_id WITH =,
			daterange(check_in::date, check_out::date, '[]') WITH &&
		) WHERE (status <> 'cancelled');
	EXCEPTION WHEN duplicate_table OR duplicate_object THEN NULL;
	END $$;
	`).Error; err != nil {
		log.Printf("Error creating bookings_no_overlap constraint: %s\n", err.Error())
	}

	return db
}

// SeedAdminUser creates the initial back-office account from the
// environment when the users table is empty.
func SeedAdminUser() {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	dbi := db.GetDb()
	var count int64
	if err := dbi.Model(&models.User{}).Count(&count).Error; err != nil {
		log.Printf("Error counting users: %s\n", err.Error())
		return
	}
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Error hashing admin password: %s\n", err.Error())
		return
	}
	admin := models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         "admin",
	}
	if err := dbi.Create(&admin).Error; err != nil {
		log.Printf("Error seeding admin user: %s\n", err.Error())
		return
	}
	log.Printf("Seeded admin user [%s]\n", email)
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	j, err := sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(WarmOccupiedDatesCache),
	)
	if err != nil {
		log.Printf("Error running job: %s\n", err.Error())
		return
	}
	log.Printf("Job ID: %s %s\n", j.Name(), j.ID().String())
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
	}
}

// WarmOccupiedDatesCache precomputes the occupied-dates payload for every
// property so calendar widgets read from redis instead of expanding
// bookings on each request.
func WarmOccupiedDatesCache() {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	dbi := db.GetDb()
	var ids []uint
	if err := dbi.Model(&models.Property{}).Pluck("id", &ids).Error; err != nil {
		log.Printf("Error listing properties for cache warm: %s\n", err.Error())
		return
	}
	engine := common.NewEngine(dbi)
	for _, id := range ids {
		occupied := engine.OccupiedDates(id)
		if occupied.Error != "" {
			log.Printf("Error computing occupied dates for property [%d]: %s\n", id, occupied.Error)
			continue
		}
		payload, err := json.Marshal(&occupied)
		if err != nil {
			continue
		}
		if err := rd.Set(context.Background(), common.OccupiedCacheKey(id), payload, 24*time.Hour).Err(); err != nil {
			log.Printf("[redis] Error warming occupied cache for property [%d]: %s\n", id, err.Error())
		}
	}
	log.Printf("Warmed occupied-dates cache for %d properties\n", len(ids))
}
