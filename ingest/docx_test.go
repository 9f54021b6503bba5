package ingest

import (
	"archive/zip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func wordCellXML(text string, span int) string {
	props := ""
	if span > 1 {
		props = fmt.Sprintf(`<w:tcPr><w:gridSpan w:val="%d"/></w:tcPr>`, span)
	}
	return fmt.Sprintf(`<w:tc>%s<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="100"/></w:tabs></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r></w:p></w:tc>`, props, text)
}

func wordRowXML(cells ...string) string {
	var b strings.Builder
	b.WriteString("<w:tr>")
	for _, c := range cells {
		b.WriteString(wordCellXML(c, 1))
	}
	b.WriteString("</w:tr>")
	return b.String()
}

func writeDocx(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "Plata.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:document %s><w:body>%s</w:body></w:document>`, wordNS, body)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return path
}

func TestReadDOCX(t *testing.T) {
	table := "<w:tbl>" +
		wordRowXML("Зона", "Поз. обозначение", "Наименование", "Кол.", "Примечание") +
		wordRowXML("", "", "Конденсаторы", "", "") +
		wordRowXML("", "C1, C2", "К10-17в-Н90-0,1 мкФ ОЖ0.460.107ТУ", "2", "") +
		wordRowXML("", "R1", "Р1-12-0,125-10 кОм ±5% – Т", "1", "") +
		wordRowXML("", "", "Лист регистрации изменений", "", "") +
		"</w:tbl>"
	paragraph := `<w:p><w:r><w:t>Перечень элементов</w:t></w:r></w:p>`

	got, err := ReadDOCX(writeDocx(t, table+paragraph), nil)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "C1, C2", got[0].Reference)
	assert.Equal(t, 2, got[0].Quantity)
	assert.Equal(t, "Конденсаторы", got[0].GroupType)

	assert.Equal(t, "Р1-12-0,125-10 кОм ±5% - Т", got[1].Description, "тире нормализуется при чтении")
	assert.Equal(t, "", got[1].GroupType)

	assert.Equal(t, "Перечень элементов", got[2].Description)
	assert.Equal(t, 1, got[2].Quantity)
}

func TestWordRowGridSpan(t *testing.T) {
	body := "<w:tbl><w:tr>" + wordCellXML("Наименование", 2) + wordCellXML("Кол.", 1) + "</w:tr></w:tbl>"

	path := writeDocx(t, body)
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()

	doc, err := decodeDocument(rc)
	require.NoError(t, err)
	require.Len(t, doc.Body.Tables, 1)
	assert.Equal(t, []string{"Наименование", "Наименование", "Кол."}, doc.Body.Tables[0].Rows[0].cells())
}

func TestReadDOCXNotArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.docx")
	require.NoError(t, os.WriteFile(path, []byte("binary word 97"), 0o600))

	_, err := ReadDOCX(path, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}
