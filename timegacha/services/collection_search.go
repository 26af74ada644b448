package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/lunaseul/timegacha/timegacha/database/models"
	"github.com/lunaseul/timegacha/timegacha/database/repositories"
	"github.com/lunaseul/timegacha/timegacha/gacha"
	"github.com/sahilm/fuzzy"
)

// CollectionEntry pairs an owned card with its template for display
// and searching.
type CollectionEntry struct {
	Card     *models.UserCard
	Template *models.CardTemplate
}

// collectionItems implements fuzzy.Source over a user's collection.
type collectionItems []CollectionEntry

func (c collectionItems) String(i int) string {
	return strings.ToLower(c[i].Template.Character + " " + c[i].Template.Series)
}

func (c collectionItems) Len() int {
	return len(c)
}

// CollectionSearchService answers fuzzy queries over a user's owned
// cards by character or series name.
type CollectionSearchService struct {
	userCards repositories.UserCardRepository
	templates repositories.TemplateRepository
}

func NewCollectionSearchService(userCards repositories.UserCardRepository, templates repositories.TemplateRepository) *CollectionSearchService {
	return &CollectionSearchService{userCards: userCards, templates: templates}
}

// Search returns the user's collection entries matching the query,
// best matches first. An empty query returns the whole collection in
// obtained order.
func (s *CollectionSearchService) Search(ctx context.Context, userID, query string) ([]CollectionEntry, error) {
	entries, err := s.collection(ctx, userID)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return entries, nil
	}

	matches := fuzzy.FindFrom(query, collectionItems(entries))
	results := make([]CollectionEntry, 0, len(matches))
	for _, m := range matches {
		results = append(results, entries[m.Index])
	}
	return results, nil
}

// SearchByRarity works like Search but keeps only entries of the given
// rarity, preserving match order.
func (s *CollectionSearchService) SearchByRarity(ctx context.Context, userID, query string, rarity gacha.Rarity) ([]CollectionEntry, error) {
	entries, err := s.Search(ctx, userID, query)
	if err != nil {
		return nil, err
	}
	filtered := make([]CollectionEntry, 0, len(entries))
	for _, e := range entries {
		if e.Template.Rarity == rarity.Weight() {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (s *CollectionSearchService) collection(ctx context.Context, userID string) ([]CollectionEntry, error) {
	cards, err := s.userCards.GetAllByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	if len(cards) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(cards))
	seen := make(map[int64]bool, len(cards))
	for _, card := range cards {
		if !seen[card.TemplateID] {
			seen[card.TemplateID] = true
			ids = append(ids, card.TemplateID)
		}
	}
	templates, err := s.templates.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	byID := make(map[int64]*models.CardTemplate, len(templates))
	for _, t := range templates {
		byID[t.ID] = t
	}

	entries := make([]CollectionEntry, 0, len(cards))
	for _, card := range cards {
		template, ok := byID[card.TemplateID]
		if !ok {
			// Template deactivated and purged from the pool; the owned
			// card still renders without it elsewhere, skip here.
			continue
		}
		entries = append(entries, CollectionEntry{Card: card, Template: template})
	}
	return entries, nil
}
