package service

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
)

// CashRequest records money entering or leaving the drawer outside a sale.
// An empty Date means today.
type CashRequest struct {
	Type        model.CashDirection `json:"type" validate:"required,oneof=IN OUT"`
	Amount      decimal.Decimal     `json:"amount" validate:"decimal_gt0"`
	Description string              `json:"description" validate:"max=255"`
	Date        string              `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type CashService interface {
	Record(ctx context.Context, req *CashRequest, actor model.Actor) (*model.CashTransaction, error)
	List(ctx context.Context, start, end time.Time) ([]model.CashTransaction, error)
}

type cashService struct {
	repo repository.CashRepository
	now  func() time.Time
}

func NewCashService(repo repository.CashRepository) CashService {
	return &cashService{repo: repo, now: time.Now}
}

func (s *cashService) Record(ctx context.Context, req *CashRequest, actor model.Actor) (*model.CashTransaction, error) {
	if err := firstValidationError(req); err != nil {
		return nil, err
	}

	date := truncateDay(s.now())
	if req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			return nil, &ValidationError{Field: "date", Message: "use YYYY-MM-DD"}
		}
		date = parsed
	}

	tx := &model.CashTransaction{
		Type:        req.Type,
		Amount:      req.Amount.Round(2),
		Description: strings.TrimSpace(req.Description),
		Date:        date,
		UserID:      actor.ID,
	}
	tx.CreatedBy = actor.ID.String()
	tx.UpdatedBy = actor.ID.String()

	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, classifyStoreError(err)
	}
	return tx, nil
}

func (s *cashService) List(ctx context.Context, start, end time.Time) ([]model.CashTransaction, error) {
	return s.repo.FindBetween(ctx, start, end)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
