package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"bomsplit/logger"
	"bomsplit/model"
)

// ErrInvalidRule правило без категории, без условия или с неверным regex
var ErrInvalidRule = errors.New("invalid rule")

// ContainsLimit максимальная длина условия contains, создаваемого при разметке
const ContainsLimit = 160

// Rule правило ручной классификации.
// Если заданы оба условия, должны совпасть оба.
type Rule struct {
	Contains string         `json:"contains,omitempty" yaml:"contains,omitempty"`
	Regex    string         `json:"regex,omitempty" yaml:"regex,omitempty"`
	Category model.Category `json:"category" yaml:"category"`
}

type compiledRule struct {
	contains string
	re       *regexp.Regexp
	category model.Category
}

// File файл правил (JSON или YAML по расширению)
type File struct {
	Path  string
	Rules []Rule

	compiled []compiledRule
	log      *zap.Logger
}

// New пустой файл правил, который будет сохранен по path
func New(path string, log *zap.Logger) *File {
	return &File{Path: path, log: logger.OrNop(log)}
}

// Load читает правила. Отсутствующий файл не ошибка, получится пустой набор.
// Ошибочные записи логируются и пропускаются.
func Load(path string, log *zap.Logger) (*File, error) {
	const op = "rules.Load"

	f := New(path, log)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return f, fmt.Errorf("%s: %w", op, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return f, nil
	}

	if err := f.decode(data); err != nil {
		return f, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	return f, nil
}

func (f *File) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(f.Path))
	return ext == ".yaml" || ext == ".yml"
}

func (f *File) decode(data []byte) error {
	if f.isYAML() {
		var nodes []yaml.Node
		if err := yaml.Unmarshal(data, &nodes); err != nil {
			return fmt.Errorf("failed to parse yaml: %w", err)
		}
		for i := range nodes {
			var r Rule
			if err := nodes[i].Decode(&r); err != nil {
				f.warn(i, fmt.Errorf("%w: %v", ErrInvalidRule, err))
				continue
			}
			f.add(i, r)
		}
		return nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("failed to parse json: %w", err)
	}
	for i, raw := range raws {
		var r Rule
		if err := json.Unmarshal(raw, &r); err != nil {
			f.warn(i, fmt.Errorf("%w: %v", ErrInvalidRule, err))
			continue
		}
		f.add(i, r)
	}
	return nil
}

func (f *File) warn(i int, err error) {
	f.log.Warn("⚠ Правило пропущено", logger.Int("index", i+1), logger.ErrorF(err))
}

func (f *File) add(i int, r Rule) {
	c, err := compile(r)
	if err != nil {
		f.warn(i, err)
		return
	}
	r.Category = c.category
	f.Rules = append(f.Rules, r)
	f.compiled = append(f.compiled, c)
}

func compile(r Rule) (compiledRule, error) {
	cat, ok := model.ParseCategory(string(r.Category))
	if !ok {
		return compiledRule{}, fmt.Errorf("%w: unknown category %q", ErrInvalidRule, r.Category)
	}

	c := compiledRule{
		contains: strings.ToLower(strings.TrimSpace(r.Contains)),
		category: cat,
	}
	if r.Regex != "" {
		re, err := regexp.Compile("(?i)" + r.Regex)
		if err != nil {
			return compiledRule{}, fmt.Errorf("%w: %v", ErrInvalidRule, err)
		}
		c.re = re
	}
	if c.contains == "" && c.re == nil {
		return compiledRule{}, fmt.Errorf("%w: empty condition", ErrInvalidRule)
	}
	return c, nil
}

func (c compiledRule) match(blob string) bool {
	if c.contains != "" && !strings.Contains(strings.ToLower(blob), c.contains) {
		return false
	}
	return c.re == nil || c.re.MatchString(blob)
}

// Blob текст записи, по которому проверяются правила:
// наименование, номинал, артикул и обозначение через пробел
func Blob(r model.ComponentRecord) string {
	return joinNonEmpty(r.Description, r.Value, r.PartNumber, r.Reference)
}

// PromptText текст записи, который показывается при разметке и сохраняется в contains
func PromptText(r model.ComponentRecord) string {
	return joinNonEmpty(r.Description, r.Value, r.PartNumber)
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// Apply назначает категории нераспределенным записям.
// Правила проверяются по порядку, первое совпавшее побеждает.
// Возвращает число переклассифицированных записей.
func (f *File) Apply(records []model.ComponentRecord) int {
	if len(f.compiled) == 0 {
		return 0
	}

	applied := 0
	for i := range records {
		if records[i].Category != model.CategoryUnclassified {
			continue
		}
		blob := Blob(records[i])
		for _, c := range f.compiled {
			if c.match(blob) {
				records[i].Category = c.category
				applied++
				break
			}
		}
	}
	if applied > 0 {
		f.log.Info("✓ Записи классифицированы по сохраненным правилам",
			logger.Int("records", applied), logger.Int("rules", len(f.compiled)), logger.String("path", f.Path))
	}
	return applied
}

// Append добавляет правило "contains" из текста разметки
func (f *File) Append(text string, category model.Category) error {
	r := Rule{Contains: truncateRunes(strings.TrimSpace(text), ContainsLimit), Category: category}
	c, err := compile(r)
	if err != nil {
		return err
	}
	f.Rules = append(f.Rules, r)
	f.compiled = append(f.compiled, c)
	return nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// Save атомарно записывает правила: временный файл в той же папке и rename
func (f *File) Save() error {
	const op = "rules.Save"

	data, err := f.encode()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (f *File) encode() ([]byte, error) {
	rules := f.Rules
	if rules == nil {
		rules = []Rule{}
	}

	if f.isYAML() {
		return yaml.Marshal(rules)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rules); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
