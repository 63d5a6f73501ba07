// Package words supplies the secret word for each round: an AI generator
// when configured, a static category corpus otherwise. A round always gets a
// word; provider failures fall back, they never surface to participants.
package words

import (
	"context"
	"math/rand"
	"sort"
)

// Word is a secret word with the category it belongs to.
type Word struct {
	Word     string `json:"word"`
	Category string `json:"category"`
}

// Provider hands out a random word, optionally constrained to a category.
type Provider interface {
	RandomWord(ctx context.Context, category string) Word
}

// baseWords is the static fallback corpus, keyed by category.
var baseWords = map[string][]string{
	"objetos": {
		"mesa", "silla", "lápiz", "libro", "teléfono",
		"computadora", "ventana", "puerta", "cama", "espejo",
	},
	"animales": {
		"perro", "gato", "león", "tigre", "elefante",
		"jirafa", "mono", "oso", "lobo", "zorro",
	},
	"comida": {
		"pizza", "hamburguesa", "manzana", "plátano", "naranja",
		"arroz", "pasta", "pan", "queso", "leche",
	},
	"lugares": {
		"playa", "montaña", "ciudad", "pueblo", "bosque",
		"desierto", "río", "lago", "oceano", "isla",
	},
	"profesiones": {
		"médico", "profesor", "cocinero", "bombero", "policía",
		"ingeniero", "arquitecto", "abogado", "periodista", "fotógrafo",
	},
}

// Categories lists the corpus categories in stable order.
func Categories() []string {
	cats := make([]string, 0, len(baseWords))
	for c := range baseWords {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// StaticProvider serves words from the built-in corpus only.
type StaticProvider struct{}

func (StaticProvider) RandomWord(_ context.Context, category string) Word {
	words, ok := baseWords[category]
	if !ok {
		cats := Categories()
		category = cats[rand.Intn(len(cats))]
		words = baseWords[category]
	}
	return Word{
		Word:     words[rand.Intn(len(words))],
		Category: category,
	}
}
