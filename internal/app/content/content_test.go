package content

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typerace/internal/app/race"
	"typerace/internal/pkg/errs"
)

func TestPromptCoversEveryGenre(t *testing.T) {
	levels := []string{race.LevelBeginner, race.LevelIntermediate, race.LevelExpert}

	for _, level := range levels {
		for _, genre := range race.Genres(race.TypeParagraph) {
			p, err := Prompt(race.ContentConfig{Type: race.TypeParagraph, Level: level, Genre: genre, TestDuration: 30})
			require.NoError(t, err)
			assert.Contains(t, p, genre)
			assert.NotContains(t, p, "{genre}")
		}
		for _, lang := range []string{race.LanguageJavaScript, race.LanguagePython} {
			for _, genre := range race.Genres(race.TypeCode) {
				p, err := Prompt(race.ContentConfig{Type: race.TypeCode, Level: level, Language: lang, Genre: genre, TestDuration: 30})
				require.NoError(t, err)
				assert.Contains(t, p, genre)
			}
		}
	}
}

func TestPromptRejectsInvalidGenre(t *testing.T) {
	_, err := Prompt(race.ContentConfig{Type: race.TypeParagraph, Level: race.LevelBeginner, Genre: "utility", TestDuration: 30})
	assert.True(t, errs.Is(err, errs.ErrInvalidGenre))
}

func TestLLMGenerator(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  def gcd(a, b): return a  \n"}}]}`))
	}))
	defer srv.Close()

	gen := NewLLMGenerator(srv.URL, "sk-test", "test-model", time.Second)
	cfg := race.ContentConfig{Type: race.TypeCode, Level: race.LevelBeginner, Language: race.LanguagePython, Genre: "algorithm", TestDuration: 30}

	text, err := gen.Generate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "def gcd(a, b): return a", text)

	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 500, got.MaxTokens)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, systemPrompt, got.Messages[0].Content)
	assert.Equal(t, "Write a Python function implementing algorithm.", got.Messages[1].Content)
}

func TestLLMGeneratorUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	gen := NewLLMGenerator(srv.URL, "", "m", time.Second)
	_, err := gen.Generate(context.Background(), race.ContentConfig{}.WithDefaults())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestLLMGeneratorValidatesBeforeCalling(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	gen := NewLLMGenerator(srv.URL, "", "m", time.Second)
	_, err := gen.Generate(context.Background(), race.ContentConfig{Type: race.TypeCode, Level: race.LevelBeginner, Genre: "algorithm", TestDuration: 30})
	assert.True(t, errs.Is(err, errs.ErrInvalidLanguage))
	assert.False(t, called)
}

func TestLocalGenerator(t *testing.T) {
	gen := NewLocalGenerator()
	ctx := context.Background()

	text, err := gen.Generate(ctx, race.ContentConfig{}.WithDefaults())
	require.NoError(t, err)
	assert.Len(t, strings.Fields(text), 40)
	assert.True(t, strings.HasSuffix(text, "."))

	code, err := gen.Generate(ctx, race.ContentConfig{Type: race.TypeCode, Level: race.LevelExpert, Language: race.LanguageJavaScript, Genre: "utility", TestDuration: 60})
	require.NoError(t, err)
	parts := strings.Split(code, "\n\n")
	assert.GreaterOrEqual(t, len(parts), 2)

	_, err = gen.Generate(ctx, race.ContentConfig{Type: "poem"})
	assert.True(t, errs.Is(err, errs.ErrInvalidContentType))
}
