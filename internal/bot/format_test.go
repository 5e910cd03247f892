package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy-analyzer/internal/models"
)

func TestPlainText(t *testing.T) {
	got := plainText("<b>Best</b> plan &lt;12¢&gt;\n<code>#4</code> &amp; more")
	assert.Equal(t, "Best plan <12¢>\n#4 & more", got)
}

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "A &amp; B &lt;x&gt;", escapeHTML("A & B <x>"))
}

func TestBar(t *testing.T) {
	assert.Equal(t, "", bar(0, 10))
	assert.Equal(t, "", bar(3, 0))
	assert.Equal(t, "█", bar(1, 100))
	assert.Equal(t, "████████████", bar(10, 10))
	assert.Equal(t, "██████", bar(5, 10))
}

func TestParseFilters(t *testing.T) {
	cases := []struct {
		name    string
		args    []string
		want    models.PlanFilter
		wantErr bool
	}{
		{name: "none", args: nil},
		{name: "all keys", args: []string{"provider=Gexa", "type=Fixed", "service=commercial", "zip=77002", "months=24"},
			want: models.PlanFilter{Provider: "Gexa", PlanType: "Fixed", ServiceType: models.ServiceCommercial, ZipCode: "77002", ContractMonths: 24}},
		{name: "multi word value", args: []string{"provider=TXU", "Energy", "zip=75001"},
			want: models.PlanFilter{Provider: "TXU Energy", ZipCode: "75001"}},
		{name: "case insensitive key", args: []string{"ZIP=75001"}, want: models.PlanFilter{ZipCode: "75001"}},
		{name: "dangling word", args: []string{"Energy"}, wantErr: true},
		{name: "word after zip", args: []string{"zip=75001", "extra"}, wantErr: true},
		{name: "unknown key", args: []string{"color=red"}, wantErr: true},
		{name: "bad months", args: []string{"months=twelve"}, wantErr: true},
		{name: "bad service", args: []string{"service=Industrial"}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseFilters(tc.args)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDescribeFilter(t *testing.T) {
	assert.Equal(t, "all plans", describeFilter(models.PlanFilter{}))
	assert.Equal(t, "provider Gexa, zip 75001, 12 months",
		describeFilter(models.PlanFilter{Provider: "Gexa", ZipCode: "75001", ContractMonths: 12}))
}
