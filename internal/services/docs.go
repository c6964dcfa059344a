package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/MacMoment/coding/internal/data/repos"
	types "github.com/MacMoment/coding/internal/domain"
	"github.com/MacMoment/coding/internal/platform/dbctx"
	"github.com/MacMoment/coding/internal/platform/logger"
)

// MaxGenerationDocs bounds how many entries are attached to one generation.
const MaxGenerationDocs = 5

type DocSearchResult struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Platform  string    `json:"platform"`
	Version   string    `json:"version,omitempty"`
	Content   string    `json:"content"`
	Relevance float64   `json:"relevance"`
}

// ImportEntry is one row of a docs import file.
type ImportEntry struct {
	Title    string `yaml:"title" json:"title" validate:"required"`
	Platform string `yaml:"platform" json:"platform" validate:"required"`
	Version  string `yaml:"version" json:"version"`
	Content  string `yaml:"content" json:"content" validate:"required"`
	Source   string `yaml:"source" json:"source"`
}

type DocsService interface {
	// SearchForGeneration ranks at most five entries of platform against the
	// prompt's keywords. A prompt without keywords yields no results.
	SearchForGeneration(ctx context.Context, prompt, platform string) ([]DocSearchResult, error)
	Import(ctx context.Context, entries []ImportEntry) (int, error)
	Stats(ctx context.Context) (map[string]int64, error)
}

type docsService struct {
	log  *logger.Logger
	docs repos.DocEntryRepo
}

func NewDocsService(baseLog *logger.Logger, docs repos.DocEntryRepo) DocsService {
	return &docsService{log: baseLog.With("service", "DocsService"), docs: docs}
}

var stopWords = toSet(
	"a", "an", "the", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "do", "does", "did", "will", "would", "could",
	"should", "may", "might", "must", "shall", "can", "need", "dare",
	"to", "of", "in", "for", "on", "with", "at", "by", "from", "as",
	"into", "through", "during", "before", "after", "above", "below",
	"between", "under", "again", "further", "then", "once", "here",
	"there", "when", "where", "why", "how", "all", "each", "few", "more",
	"most", "other", "some", "such", "no", "nor", "not", "only", "own",
	"same", "so", "than", "too", "very", "just", "and", "but", "if", "or",
	"because", "until", "while", "that", "which", "who", "what", "this",
	"these", "those", "i", "me", "my", "we", "our", "you", "your", "it",
	"create", "make", "build", "add", "want", "plugin", "bot", "mod",
)

var nonWord = regexp.MustCompile(`[^\w\s]`)

// ExtractKeywords lowercases text, turns punctuation into spaces and keeps the
// distinct words longer than two characters that are not stop words, in
// first-seen order.
func ExtractKeywords(text string) []string {
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	seen := map[string]bool{}
	out := []string{}
	for _, w := range strings.Fields(cleaned) {
		if len(w) <= 2 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// Relevance is (2 per keyword in the title + 1 per keyword in the content)
// divided by the number of keywords.
func Relevance(title, content string, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	lt, lc := strings.ToLower(title), strings.ToLower(content)
	score := 0
	for _, kw := range keywords {
		if strings.Contains(lt, kw) {
			score += 2
		}
		if strings.Contains(lc, kw) {
			score++
		}
	}
	return float64(score) / float64(len(keywords))
}

func (s *docsService) SearchForGeneration(ctx context.Context, prompt, platform string) ([]DocSearchResult, error) {
	keywords := ExtractKeywords(prompt)
	if len(keywords) == 0 {
		return []DocSearchResult{}, nil
	}
	entries, err := s.docs.SearchByKeywords(dbctx.New(ctx), platform, keywords, MaxGenerationDocs)
	if err != nil {
		return nil, fmt.Errorf("search docs: %w", err)
	}
	out := make([]DocSearchResult, 0, len(entries))
	for _, d := range entries {
		out = append(out, DocSearchResult{
			ID:        d.ID,
			Title:     d.Title,
			Platform:  d.Platform,
			Version:   d.Version,
			Content:   d.Content,
			Relevance: Relevance(d.Title, d.Content, keywords),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Relevance > out[j].Relevance })
	return out, nil
}

func (s *docsService) Import(ctx context.Context, entries []ImportEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	rows := make([]*types.DocEntry, 0, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Title) == "" || strings.TrimSpace(e.Platform) == "" || strings.TrimSpace(e.Content) == "" {
			return 0, fmt.Errorf("entry %d: title, platform and content are required: %w", i, ErrInvalidArgument)
		}
		rows = append(rows, &types.DocEntry{
			Title:      strings.TrimSpace(e.Title),
			Platform:   strings.TrimSpace(e.Platform),
			Version:    strings.TrimSpace(e.Version),
			Content:    e.Content,
			Source:     strings.TrimSpace(e.Source),
			IsOfficial: true,
		})
	}
	created, err := s.docs.Create(dbctx.New(ctx), rows)
	if err != nil {
		return 0, fmt.Errorf("import docs: %w", err)
	}
	s.log.Info("imported documentation entries", "count", len(created))
	return len(created), nil
}

func (s *docsService) Stats(ctx context.Context) (map[string]int64, error) {
	return s.docs.CountByPlatform(dbctx.New(ctx))
}

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
