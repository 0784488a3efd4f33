package services

import (
	"context"
	"errors"

	"github.com/justsurfingit/careerflow-dashboard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultMailbox keys the sync cursor of the signed-in Gmail account.
const DefaultMailbox = "me"

// SyncStore keeps importer state in Postgres.
type SyncStore struct {
	DB      *gorm.DB
	Mailbox string
}

func NewSyncStore(db *gorm.DB) *SyncStore {
	return &SyncStore{DB: db, Mailbox: DefaultMailbox}
}

func (s *SyncStore) LastHistoryID(ctx context.Context) (uint64, error) {
	var state models.SyncState
	err := s.DB.WithContext(ctx).Where("mailbox = ?", s.Mailbox).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return state.LastHistoryID, nil
}

func (s *SyncStore) SaveHistoryID(ctx context.Context, id uint64) error {
	state := models.SyncState{Mailbox: s.Mailbox, LastHistoryID: id}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mailbox"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_history_id", "updated_at"}),
	}).Create(&state).Error
}

func (s *SyncStore) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.ProcessedEmail{}).Where("id = ?", messageID).Count(&count).Error
	return count > 0, err
}

func (s *SyncStore) MarkProcessed(ctx context.Context, messageID string) error {
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ProcessedEmail{ID: messageID}).Error
}
