package fetchorder_test

import (
	"strings"
	"testing"

	"github.com/bagtools/bagfetch/internal/fetchorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []fetchorder.Item
	}{
		{
			"legacy two token lines",
			"http://example.org/data/a.txt a.txt\nrsync://example.org/data/b.bin data/b.bin\n",
			[]fetchorder.Item{
				{SourceURL: "http://example.org/data/a.txt", ExpectedSize: fetchorder.SizeUnknown, DestinationName: "a.txt"},
				{SourceURL: "rsync://example.org/data/b.bin", ExpectedSize: fetchorder.SizeUnknown, DestinationName: "data/b.bin"},
			},
		},
		{
			"three token lines",
			"http://example.org/a.txt 1024 data/a.txt\n",
			[]fetchorder.Item{
				{SourceURL: "http://example.org/a.txt", ExpectedSize: 1024, DestinationName: "data/a.txt"},
			},
		},
		{
			"dash size means unknown length",
			"http://example.org/a.txt - data/a.txt\n",
			[]fetchorder.Item{
				{SourceURL: "http://example.org/a.txt", ExpectedSize: fetchorder.SizeUnknown, DestinationName: "data/a.txt"},
			},
		},
		{
			"non-numeric size falls back to unknown",
			"http://example.org/a twelve a\nhttp://example.org/b -3 b\n",
			[]fetchorder.Item{
				{SourceURL: "http://example.org/a", ExpectedSize: fetchorder.SizeUnknown, DestinationName: "a"},
				{SourceURL: "http://example.org/b", ExpectedSize: fetchorder.SizeUnknown, DestinationName: "b"},
			},
		},
		{
			"mixed syntax with blank lines",
			"\nhttp://example.org/a a\n\nhttp://example.org/b 7 b\n\n",
			[]fetchorder.Item{
				{SourceURL: "http://example.org/a", ExpectedSize: fetchorder.SizeUnknown, DestinationName: "a"},
				{SourceURL: "http://example.org/b", ExpectedSize: 7, DestinationName: "b"},
			},
		},
		{
			"empty input",
			"",
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := fetchorder.Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, items)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantLine int
	}{
		{"one token", "http://example.org/a\n", 1},
		{"four tokens", "http://example.org/a 12 a extra\n", 1},
		{"later line", "http://example.org/a a\nhttp://example.org/b\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fetchorder.Parse(strings.NewReader(tt.input))
			require.Error(t, err)

			var malformed *fetchorder.MalformedLineError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.wantLine, malformed.Line)
		})
	}
}
