package accessor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type image struct{ URL string }

type record struct {
	ImageURL string
	Image    string
	Images   []image
}

func imageChain() Accessor[record] {
	return Chain[record](
		func(r record) string { return r.ImageURL },
		func(r record) string { return r.Image },
		Index(func(r record) []image { return r.Images }, 0, func(i image) string { return i.URL }),
	)
}

func TestChainPriority(t *testing.T) {
	get := imageChain()

	tests := []struct {
		name string
		in   record
		want string
	}{
		{"image_url wins", record{ImageURL: "a.png", Image: "b.png", Images: []image{{URL: "c.png"}}}, "a.png"},
		{"blank image_url skipped", record{ImageURL: "  ", Image: "b.png"}, "b.png"},
		{"falls back to first image", record{Images: []image{{URL: "c.png"}, {URL: "d.png"}}}, "c.png"},
		{"empty images", record{Images: nil}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, get(tt.in))
		})
	}
}

func TestFirstAndOr(t *testing.T) {
	_, ok := First[record](record{})
	assert.False(t, ok)

	got, ok := First(record{Image: " x.png "}, nil, func(r record) string { return r.Image })
	assert.True(t, ok)
	assert.Equal(t, "x.png", got)

	assert.Equal(t, "placeholder.png", Or(record{}, "placeholder.png", imageChain()))
}
