package rules

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"bomsplit/logger"
	"bomsplit/model"
)

// MaxPrompts сколько нераспределенных записей показывается за один запуск
const MaxPrompts = 50

// ErrStopped пользователь прервал разметку, уже принятые решения сохранены
var ErrStopped = errors.New("interactive classification stopped")

// Request вопрос о категории одной записи
type Request struct {
	Index  int // номер вопроса, с 1
	Total  int
	Text   string
	Record model.ComponentRecord
}

// Resolver отвечает на вопрос о категории.
// ok=false означает "пропустить запись".
type Resolver interface {
	Resolve(ctx context.Context, req Request) (cat model.Category, ok bool, err error)
}

// Choices категории, которые предлагаются при разметке, в порядке нумерации
var Choices = []model.Category{
	model.CategoryResistors,
	model.CategoryCapacitors,
	model.CategoryInductors,
	model.CategoryICs,
	model.CategoryConnectors,
	model.CategoryDevBoards,
	model.CategorySemiconductors,
	model.CategoryOurDevelopments,
	model.CategoryOptics,
	model.CategoryPowerModules,
	model.CategoryCables,
	model.CategoryRFModules,
	model.CategoryOthers,
	model.CategoryUnclassified,
}

// NopResolver пропускает все записи
type NopResolver struct{}

func (NopResolver) Resolve(ctx context.Context, _ Request) (model.Category, bool, error) {
	return "", false, ctx.Err()
}

// BatchResolver заранее известные ответы: текст записи -> категория
type BatchResolver map[string]model.Category

func (b BatchResolver) Resolve(ctx context.Context, req Request) (model.Category, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	cat, ok := b[req.Text]
	return cat, ok, nil
}

// Session цикл интерактивной разметки нераспределенных записей
type Session struct {
	File     *File
	Resolver Resolver
	Limit    int

	// Remember вызывается для каждого принятого решения (например, запись в базу)
	Remember func(rec model.ComponentRecord, cat model.Category)

	log *zap.Logger
}

// NewSession создает сессию разметки с лимитом MaxPrompts
func NewSession(file *File, resolver Resolver, log *zap.Logger) *Session {
	return &Session{File: file, Resolver: resolver, Limit: MaxPrompts, log: logger.OrNop(log)}
}

// Run задает вопросы по нераспределенным записям и применяет ответы.
// После каждого принятого решения файл правил сохраняется, поэтому прерывание
// оставляет корректный файл. ErrStopped не считается ошибкой.
func (s *Session) Run(ctx context.Context, records []model.ComponentRecord) (int, error) {
	const op = "rules.Session.Run"

	var pending []int
	for i := range records {
		if records[i].Category == model.CategoryUnclassified {
			pending = append(pending, i)
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	limit := s.Limit
	if limit <= 0 || limit > len(pending) {
		limit = len(pending)
	}
	s.log.Info("Нераспределенные записи", logger.Int("total", len(pending)), logger.Int("shown", limit))

	decided := 0
	for n, idx := range pending[:limit] {
		req := Request{Index: n + 1, Total: limit, Text: PromptText(records[idx]), Record: records[idx]}

		cat, ok, err := s.Resolver.Resolve(ctx, req)
		if errors.Is(err, ErrStopped) {
			s.log.Info("Разметка прервана пользователем", logger.Int("decided", decided))
			return decided, nil
		}
		if err != nil {
			return decided, fmt.Errorf("%s: %w", op, err)
		}
		if !ok || cat.IsEmpty() {
			continue
		}

		records[idx].Category = cat
		decided++
		if s.Remember != nil {
			s.Remember(records[idx], cat)
		}

		if s.File == nil || req.Text == "" {
			continue
		}
		if err := s.File.Append(req.Text, cat); err != nil {
			s.log.Warn("⚠ Правило не добавлено", logger.String("text", req.Text), logger.ErrorF(err))
			continue
		}
		if err := s.File.Save(); err != nil {
			return decided, fmt.Errorf("%s: %w", op, err)
		}
	}

	if decided > 0 && s.File != nil {
		s.log.Info("✓ Правила сохранены", logger.String("path", s.File.Path), logger.Int("decided", decided))
	}
	return decided, nil
}
