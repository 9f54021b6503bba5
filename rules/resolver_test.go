package rules

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bomsplit/model"
)

type scriptedResolver struct {
	answers []model.Category
	stopAt  int
	calls   int
}

func (s *scriptedResolver) Resolve(_ context.Context, _ Request) (model.Category, bool, error) {
	s.calls++
	if s.stopAt > 0 && s.calls == s.stopAt {
		return "", false, ErrStopped
	}
	if s.calls > len(s.answers) {
		return "", false, nil
	}
	cat := s.answers[s.calls-1]
	return cat, !cat.IsEmpty(), nil
}

func unclassified(descs ...string) []model.ComponentRecord {
	out := make([]model.ComponentRecord, len(descs))
	for i, d := range descs {
		out[i] = model.ComponentRecord{Description: d, Quantity: 1, Category: model.CategoryUnclassified}
	}
	return out
}

func TestSessionRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	records := unclassified("Корпус G104", "Стойка М3", "Шильдик")
	records = append(records, model.ComponentRecord{Description: "LM317", Category: model.CategoryICs})

	var remembered []string
	s := NewSession(New(path, nil), BatchResolver{
		"Корпус G104": model.CategoryOthers,
		"Шильдик":     model.CategoryOthers,
	}, nil)
	s.Remember = func(rec model.ComponentRecord, _ model.Category) {
		remembered = append(remembered, rec.Description)
	}

	decided, err := s.Run(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 2, decided)
	assert.Equal(t, model.CategoryOthers, records[0].Category)
	assert.Equal(t, model.CategoryUnclassified, records[1].Category)
	assert.Equal(t, []string{"Корпус G104", "Шильдик"}, remembered)

	saved, err := Load(path, nil)
	require.NoError(t, err)
	assert.Len(t, saved.Rules, 2)
}

func TestSessionRunLimit(t *testing.T) {
	_ = gofakeit.Seed(7)
	descs := make([]string, MaxPrompts+10)
	for i := range descs {
		descs[i] = gofakeit.Sentence(3)
	}

	r := &scriptedResolver{}
	s := NewSession(nil, r, nil)
	_, err := s.Run(context.Background(), unclassified(descs...))
	require.NoError(t, err)
	assert.Equal(t, MaxPrompts, r.calls)
}

func TestSessionRunStopped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	records := unclassified("Корпус G104", "Стойка М3", "Шильдик")

	r := &scriptedResolver{answers: []model.Category{model.CategoryOthers}, stopAt: 2}
	decided, err := NewSession(New(path, nil), r, nil).Run(context.Background(), records)
	require.NoError(t, err)
	assert.Equal(t, 1, decided)
	assert.Equal(t, 2, r.calls)

	_, err = os.Stat(path)
	assert.NoError(t, err, "решение до остановки уже сохранено")
}

func TestSessionRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSession(nil, BatchResolver{}, nil).Run(ctx, unclassified("Корпус"))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNopResolver(t *testing.T) {
	records := unclassified("Корпус")
	decided, err := NewSession(nil, NopResolver{}, nil).Run(context.Background(), records)
	require.NoError(t, err)
	assert.Zero(t, decided)
	assert.Equal(t, model.CategoryUnclassified, records[0].Category)
}
