package words

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStaticProviderHonorsCategory(t *testing.T) {
	p := StaticProvider{}

	for i := 0; i < 20; i++ {
		w := p.RandomWord(context.Background(), "animales")
		assert.Equal(t, "animales", w.Category)
		assert.Contains(t, baseWords["animales"], w.Word)
	}
}

func TestStaticProviderUnknownCategory(t *testing.T) {
	p := StaticProvider{}

	w := p.RandomWord(context.Background(), "naves espaciales")
	assert.NotEmpty(t, w.Word)
	assert.Contains(t, Categories(), w.Category)
}

func TestCategoriesSorted(t *testing.T) {
	cats := Categories()
	require.NotEmpty(t, cats)
	for i := 1; i < len(cats); i++ {
		assert.Less(t, cats[i-1], cats[i])
	}
}

func TestParseGeneratedWord(t *testing.T) {
	w, err := parseGeneratedWord(`{"word": "mesa", "category": "objetos"}`)
	require.NoError(t, err)
	assert.Equal(t, "mesa", w.Word)
	assert.Equal(t, "objetos", w.Category)

	w, err = parseGeneratedWord("```json\n{\"word\": \"perro\", \"category\": \"animales\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "perro", w.Word)

	_, err = parseGeneratedWord("no json here")
	assert.Error(t, err)

	_, err = parseGeneratedWord(`{"word": "", "category": "objetos"}`)
	assert.Error(t, err)
}

type mapCache struct {
	data map[string]string
}

func (c *mapCache) GetString(_ context.Context, key string) (string, bool, error) {
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) SetString(_ context.Context, key, value string, _ time.Duration) error {
	c.data[key] = value
	return nil
}

func TestServiceFallsBackToCorpus(t *testing.T) {
	svc := NewService(NewGeminiClient("", ""), nil, zap.NewNop())

	w := svc.RandomWord(context.Background(), "comida")
	assert.Equal(t, "comida", w.Category)
	assert.Contains(t, baseWords["comida"], w.Word)
}

func TestServiceUsesCachedWord(t *testing.T) {
	cache := &mapCache{data: map[string]string{
		"words:random:any": `{"word": "faro", "category": "lugares"}`,
	}}
	svc := NewService(NewGeminiClient("", ""), cache, zap.NewNop())

	w := svc.RandomWord(context.Background(), "")
	assert.Equal(t, "faro", w.Word)
	assert.Equal(t, "lugares", w.Category)
}

func TestServiceIgnoresCorruptCacheEntry(t *testing.T) {
	cache := &mapCache{data: map[string]string{
		"words:random:any": "not json",
	}}
	svc := NewService(NewGeminiClient("", ""), cache, zap.NewNop())

	w := svc.RandomWord(context.Background(), "")
	assert.NotEmpty(t, w.Word)
}
