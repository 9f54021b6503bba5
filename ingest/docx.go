package ingest

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"bomsplit/logger"
	"bomsplit/model"
)

// wordDocument тело word/document.xml: таблицы и абзацы верхнего уровня
type wordDocument struct {
	Body struct {
		Paragraphs []wordParagraph `xml:"p"`
		Tables     []wordTable     `xml:"tbl"`
	} `xml:"body"`
}

type wordTable struct {
	Rows []wordRow `xml:"tr"`
}

type wordRow struct {
	Cells []wordCell `xml:"tc"`
}

type wordCell struct {
	Props struct {
		GridSpan struct {
			Val int `xml:"val,attr"`
		} `xml:"gridSpan"`
	} `xml:"tcPr"`
	Paragraphs []wordParagraph `xml:"p"`
}

// wordParagraph текст абзаца в порядке следования runs
type wordParagraph struct {
	Text string
}

// UnmarshalXML собирает текст абзаца с учетом табуляций и переносов,
// включая runs внутри гиперссылок и правок.
func (p *wordParagraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth, inText := 0, false
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr", "rPr", "delText", "instrText":
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
			depth++
		case xml.EndElement:
			if depth == 0 {
				p.Text = b.String()
				return nil
			}
			depth--
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
}

func (c wordCell) text() string {
	lines := make([]string, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		lines = append(lines, p.Text)
	}
	return strings.Join(lines, "\n")
}

// cells текст ячеек строки; объединенная по горизонтали ячейка повторяется
func (r wordRow) cells() []string {
	out := make([]string, 0, len(r.Cells))
	for _, c := range r.Cells {
		text := normalizeCell(c.text())
		span := max(c.Props.GridSpan.Val, 1)
		for range span {
			out = append(out, text)
		}
	}
	return out
}

// ReadDOCX читает перечень элементов из таблиц документа Word.
// Абзацы вне таблиц разбираются как строки свободного текста.
func ReadDOCX(path string, log *zap.Logger) ([]model.ComponentRecord, error) {
	const op = "ingest.ReadDOCX"
	log = logger.OrNop(log)

	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			return nil, fmt.Errorf("%s: %w: не docx-архив", op, ErrUnsupportedFormat)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer zr.Close()

	var doc *wordDocument
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		doc, err = decodeDocument(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		break
	}
	if doc == nil {
		return nil, fmt.Errorf("%s: %w: нет word/document.xml", op, ErrUnsupportedFormat)
	}

	records := parseDocument(doc)
	log.Debug("Документ разобран",
		logger.String("file", path),
		logger.Int("tables", len(doc.Body.Tables)),
		logger.Int("records", len(records)))
	return records, nil
}

func decodeDocument(r io.Reader) (*wordDocument, error) {
	var doc wordDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document.xml: %w", err)
	}
	return &doc, nil
}

func parseDocument(doc *wordDocument) []model.ComponentRecord {
	var records []model.ComponentRecord
	for _, tbl := range doc.Body.Tables {
		records = append(records, parseTable(tbl)...)
	}

	for _, p := range doc.Body.Paragraphs {
		text := normalizeCell(p.Text)
		if text == "" || isServiceRow(text) {
			continue
		}
		if rec, ok := lineRecord(text); ok {
			records = append(records, rec)
		}
	}

	if len(records) == 0 {
		texts := make([]string, 0, len(doc.Body.Paragraphs))
		for _, p := range doc.Body.Paragraphs {
			if t := normalizeCell(p.Text); t != "" {
				texts = append(texts, t)
			}
		}
		if len(texts) > 0 {
			records = append(records, model.ComponentRecord{Description: strings.Join(texts, " "), Quantity: 1})
		}
	}
	return records
}

// docxHeaderKeywords слова заголовка таблицы перечня
var docxHeaderKeywords = []string{"наимен", "обознач", "кол.", "кол ", "кол", "примеч"}

// headerIndex ищет строку заголовка среди первых пяти строк таблицы.
// Заголовком считается строка, в которой ключевые слова есть хотя бы в двух ячейках.
func headerIndex(rows [][]string) int {
	for i := 0; i < min(5, len(rows)); i++ {
		hits := 0
		for _, c := range rows[i] {
			lc := strings.ToLower(c)
			for _, k := range docxHeaderKeywords {
				if strings.Contains(lc, k) {
					hits++
					break
				}
			}
		}
		if hits >= 2 {
			return i
		}
	}
	return 0
}

// docxColumns индексы колонок таблицы перечня, -1 если нет
type docxColumns struct {
	zone, ref, name, qty, note int
}

func findDocxColumns(header []string) docxColumns {
	norm := NormalizeHeader(header)
	find := func(candidates ...string) int {
		for i, h := range norm {
			for _, c := range candidates {
				if strings.Contains(h, c) {
					return i
				}
			}
		}
		return -1
	}
	return docxColumns{
		zone: find("зона"),
		ref:  find("поз", "обозн"),
		name: find("наимен"),
		qty:  find("кол.", "кол ", "кол", "количество"),
		note: find("примеч"),
	}
}

func parseTable(tbl wordTable) []model.ComponentRecord {
	if len(tbl.Rows) == 0 {
		return nil
	}
	rows := make([][]string, len(tbl.Rows))
	for i, r := range tbl.Rows {
		rows[i] = r.cells()
	}

	h := headerIndex(rows)
	cols := findDocxColumns(rows[h])

	var state GroupState
	for _, vals := range rows[h+1:] {
		FoldRow(&state, Row{
			Zone:      cell(vals, cols.zone),
			Reference: cell(vals, cols.ref),
			Name:      cell(vals, cols.name),
			Qty:       cell(vals, cols.qty),
			Note:      cell(vals, cols.note),
			Cells:     vals,
		})
	}
	return state.Records
}
