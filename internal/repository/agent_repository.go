package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Techne-Finance/techne-sub000/internal/models"
)

// AgentRepository інтерфейс для trading agent конфігурацій
type AgentRepository interface {
	Create(agent *models.AgentConfig) error
	Update(agent *models.AgentConfig) error
	Delete(userID uint, externalID string) error
	GetByExternalID(userID uint, externalID string) (*models.AgentConfig, error)
	ListByUser(userID uint) ([]*models.AgentConfig, error)
	CountByUser(userID uint) (int64, error)
}

// AgentRepositoryImpl implementation
type AgentRepositoryImpl struct {
	db *gorm.DB
}

// NewAgentRepository створює новий agent repository
func NewAgentRepository(db *gorm.DB) AgentRepository {
	return &AgentRepositoryImpl{db: db}
}

func (r *AgentRepositoryImpl) Create(agent *models.AgentConfig) error {
	return r.db.Create(agent).Error
}

func (r *AgentRepositoryImpl) Update(agent *models.AgentConfig) error {
	return r.db.Save(agent).Error
}

func (r *AgentRepositoryImpl) Delete(userID uint, externalID string) error {
	return r.db.
		Where("user_id = ? AND external_id = ?", userID, externalID).
		Delete(&models.AgentConfig{}).Error
}

func (r *AgentRepositoryImpl) GetByExternalID(userID uint, externalID string) (*models.AgentConfig, error) {
	var agent models.AgentConfig
	err := r.db.
		Where("user_id = ? AND external_id = ?", userID, externalID).
		First(&agent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &agent, nil
}

func (r *AgentRepositoryImpl) ListByUser(userID uint) ([]*models.AgentConfig, error) {
	var agents []*models.AgentConfig
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&agents).Error
	return agents, err
}

func (r *AgentRepositoryImpl) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.AgentConfig{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
