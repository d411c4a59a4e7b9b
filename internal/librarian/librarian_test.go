package librarian

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type GeneratorMock struct{ mock.Mock }

func (m *GeneratorMock) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSearch_Offline(t *testing.T) {
	l := New(newNoopLogger(), nil, 0)
	require.True(t, l.Offline())

	first, err := l.Search(context.Background(), "slims", nil)
	require.NoError(t, err)
	require.Len(t, first, 3)
	assert.Equal(t, "Panduan SLiMS untuk Pemula", first[0].Title)

	more, err := l.Search(context.Background(), "slims", []string{first[0].Title})
	require.NoError(t, err)
	require.Len(t, more, 3)
	assert.Equal(t, "Psikologi Pemustaka", more[0].Title)

	first[0].Title = "changed"
	again, _ := l.Search(context.Background(), "slims", nil)
	assert.Equal(t, "Panduan SLiMS untuk Pemula", again[0].Title)
}

func TestSearch_Model(t *testing.T) {
	gen := new(GeneratorMock)
	gen.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return assert.ObjectsAreEqual(Prompt("sejarah", []string{"Buku Lama"}), p)
	})).Return(`[
		{"title":"Sejarah Nusantara","author":"A","year":"2020","summary":"s","category":"Sejarah"},
		{"title":"buku lama","author":"B","year":"2019","summary":"s","category":"Sejarah"},
		{"title":"","author":"C","year":"2018","summary":"s","category":"Sejarah"}
	]`, nil)

	books, err := New(newNoopLogger(), gen, 0).Search(context.Background(), "sejarah", []string{"Buku Lama"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Sejarah Nusantara", books[0].Title)
}

func TestSearch_Failures(t *testing.T) {
	tests := []struct {
		name string
		out  string
		err  error
	}{
		{"ошибка API", "", errors.New("quota exceeded")},
		{"пустой ответ", "  ", nil},
		{"не JSON", "maaf", nil},
		{"пустой массив", "[]", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(GeneratorMock)
			gen.On("Generate", mock.Anything, mock.Anything).Return(tt.out, tt.err)

			_, err := New(newNoopLogger(), gen, 0).Search(context.Background(), "x", nil)
			assert.ErrorIs(t, err, ErrGeneration)
		})
	}
}

func TestPrompt(t *testing.T) {
	p := Prompt(" kimia ", nil)
	assert.Contains(t, p, `"kimia"`)
	assert.NotContains(t, p, "Do not include")
	assert.Contains(t, p, "Indonesian")

	p = Prompt("kimia", []string{"A", "B"})
	assert.Contains(t, p, "Do not include any of these books in the response: A, B.")
}
