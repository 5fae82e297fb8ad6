package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/medlabel/medlabel-backend/internal/logger"
	"github.com/medlabel/medlabel-backend/internal/repos"
	"github.com/medlabel/medlabel-backend/internal/types"
)

type Stats struct {
	Documents int64 `json:"documents"`
	Unclaimed int64 `json:"unclaimed"`
	InProcess int64 `json:"in_process"`
	Completed int64 `json:"completed"`
}

type StatsService interface {
	Overview(ctx context.Context) (*Stats, error)
}

type statsService struct {
	db           *gorm.DB
	log          *logger.Logger
	documentRepo repos.DocumentRepo
	claimRepo    repos.ClaimRepo
}

func NewStatsService(db *gorm.DB, baseLog *logger.Logger, documentRepo repos.DocumentRepo, claimRepo repos.ClaimRepo) StatsService {
	return &statsService{
		db:           db,
		log:          baseLog.With("service", "StatsService"),
		documentRepo: documentRepo,
		claimRepo:    claimRepo,
	}
}

func (s *statsService) Overview(ctx context.Context) (*Stats, error) {
	total, err := s.documentRepo.Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	inProcess, err := s.claimRepo.CountByStatus(ctx, nil, types.ClaimStatusInProcess)
	if err != nil {
		return nil, err
	}
	completed, err := s.claimRepo.CountByStatus(ctx, nil, types.ClaimStatusCompleted)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Documents: total,
		Unclaimed: total - inProcess - completed,
		InProcess: inProcess,
		Completed: completed,
	}, nil
}
