package services

import (
	"errors"
	"fmt"

	"signal-bot-backend/internal/config"
	"signal-bot-backend/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// UserService is the durable user registry, backed by sqlite. Every
// mutation is a single statement, so per-user writes are atomic without
// any extra locking.
type UserService struct {
	db *gorm.DB
}

func NewUserService(cfg *config.Config) (*UserService, error) {
	db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite at %s: %v", cfg.SQLitePath, err)
	}

	if err := db.AutoMigrate(&models.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate users table: %v", err)
	}

	return &UserService{db: db}, nil
}

// UpsertUser registers first contact. On conflict only the username is
// refreshed; Approved, PlatformUID and JoinedAt are left alone, so a
// repeated /start never resets an approval.
func (s *UserService) UpsertUser(id int64, username string) error {
	user := models.User{ID: id, Username: username}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username"}),
	}).Create(&user).Error
}

// LinkPlatformUID stores the external account id submitted via
// /register. Re-linking overwrites the previous value.
func (s *UserService) LinkPlatformUID(id int64, uid string) error {
	res := s.db.Model(&models.User{}).Where("id = ?", id).Update("platform_uid", uid)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserService) SetApproval(id int64, approved bool) error {
	res := s.db.Model(&models.User{}).Where("id = ?", id).Update("approved", approved)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsApproved reports false for unknown users rather than erroring.
func (s *UserService) IsApproved(id int64) bool {
	var user models.User
	if err := s.db.Select("approved").First(&user, "id = ?", id).Error; err != nil {
		return false
	}
	return user.Approved
}

func (s *UserService) GetUser(id int64) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := s.db.Order("joined_at asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) DeleteUser(id int64) error {
	return s.db.Delete(&models.User{}, "id = ?", id).Error
}
