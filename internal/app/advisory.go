package app

import (
	"context"
	"fmt"
	"strings"

	"stayfinder/internal/domain"
)

type AdvisoryService struct{ advisor domain.Advisor }

func NewAdvisoryService(a domain.Advisor) *AdvisoryService {
	return &AdvisoryService{advisor: a}
}

// Ask forwards a guest question to the knowledge base.
func (s *AdvisoryService) Ask(ctx context.Context, query string) (domain.Advice, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return domain.Advice{}, domain.Invalid("query is required")
	}
	adv, err := s.advisor.Ask(ctx, q)
	if err != nil {
		return domain.Advice{}, fmt.Errorf("advisory: %w", err)
	}
	if adv.Citations == nil {
		adv.Citations = []domain.Citation{}
	}
	return adv, nil
}
