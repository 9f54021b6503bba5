package aggregation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bomsplit/model"
)

func TestParseExclusions(t *testing.T) {
	input := `# комментарий
AD9221AR, 2

GRM1885C1H681J, 1
без запятой
AD8307, много
`
	items, err := ParseExclusions(strings.NewReader(input), nil)

	require.NoError(t, err)
	assert.Equal(t, []Exclusion{
		{Name: "AD9221AR", Quantity: 2},
		{Name: "GRM1885C1H681J", Quantity: 1},
	}, items)
}

func TestApplyExclusions(t *testing.T) {
	records := []model.ComponentRecord{
		{Description: "AD9221AR", Quantity: 1},
		{Description: "Микросхема ad9221ar", Quantity: 3},
		{Description: "GRM1885C1H681J", Quantity: 5},
	}

	got := ApplyExclusions(records, []Exclusion{
		{Name: "AD9221AR", Quantity: 2},
		{Name: "GRM1885C1H681J", Quantity: 5},
		{Name: "нет такого", Quantity: 1},
	}, nil)

	require.Len(t, got, 1)
	assert.Equal(t, "Микросхема ad9221ar", got[0].Description)
	assert.Equal(t, 2, got[0].Quantity)
}
