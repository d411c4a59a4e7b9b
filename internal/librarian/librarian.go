// Package librarian — AI-библиотекарь: подбирает вымышленные, но правдоподобные
// книги для каталога SLiMS по запросу пользователя.
package librarian

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/cloudslims/internal/lib/sl"
)

// ErrGeneration — модель вернула ошибку или пустой ответ.
var ErrGeneration = errors.New("text generation failed")

// Book — рекомендация библиотекаря.
type Book struct {
	Title    string `json:"title"`
	Author   string `json:"author"`
	Year     string `json:"year"`
	Summary  string `json:"summary"`
	Category string `json:"category"`
}

// Generator возвращает JSON-массив книг по промпту.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Librarian отвечает на поисковые запросы. Без генератора работает офлайн.
type Librarian struct {
	log     *slog.Logger
	gen     Generator
	timeout time.Duration
}

// New создаёт библиотекаря. gen == nil включает офлайн-ответы.
func New(log *slog.Logger, gen Generator, timeout time.Duration) *Librarian {
	return &Librarian{log: log, gen: gen, timeout: timeout}
}

// Offline сообщает, работает ли библиотекарь без модели.
func (l *Librarian) Offline() bool {
	return l.gen == nil
}

// Search подбирает три книги по запросу, не повторяя exclude.
func (l *Librarian) Search(ctx context.Context, query string, exclude []string) ([]Book, error) {
	const op = "librarian.Search"
	log := l.log.With(slog.String("op", op))

	if l.gen == nil {
		log.Debug("no api key, returning offline results")
		return offlineBooks(exclude), nil
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	raw, err := l.gen.Generate(ctx, Prompt(query, exclude))
	if err != nil {
		log.Error("generation failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrGeneration, err)
	}
	books, err := parseBooks(raw)
	if err != nil {
		log.Error("bad model output", sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrGeneration, err)
	}
	books = withoutTitles(books, exclude)
	if len(books) == 0 {
		return nil, fmt.Errorf("%s: %w: empty result", op, ErrGeneration)
	}
	return books, nil
}

// Prompt собирает текст запроса к модели.
func Prompt(query string, exclude []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User search query: %q.\n\n", strings.TrimSpace(query))
	b.WriteString("Act as an AI Librarian for a SLiMS (Senayan Library Management System) catalog. ")
	b.WriteString("Based on the user's search query, invent 3 fictional but realistic book entries ")
	b.WriteString("that might be found in a library related to the query.\n")
	if len(exclude) > 0 {
		fmt.Fprintf(&b, "Do not include any of these books in the response: %s.\n", strings.Join(exclude, ", "))
	}
	b.WriteString("If the query is nonsense, recommend general best-sellers.\n")
	b.WriteString("Return the result in Indonesian.")
	return b.String()
}

func parseBooks(raw string) ([]Book, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty response")
	}
	var books []Book
	if err := json.Unmarshal([]byte(raw), &books); err != nil {
		return nil, err
	}
	out := books[:0]
	for _, bk := range books {
		if strings.TrimSpace(bk.Title) != "" {
			out = append(out, bk)
		}
	}
	return out, nil
}

func withoutTitles(books []Book, exclude []string) []Book {
	if len(exclude) == 0 {
		return books
	}
	skip := make(map[string]struct{}, len(exclude))
	for _, t := range exclude {
		skip[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	out := make([]Book, 0, len(books))
	for _, bk := range books {
		if _, ok := skip[strings.ToLower(strings.TrimSpace(bk.Title))]; !ok {
			out = append(out, bk)
		}
	}
	return out
}
