package memory

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"quizplay-service/internal/domain"
)

//go:embed seed_quizzes.yaml
var defaultSeed []byte

// StaticSeedLoader is a simple loader backed by an in-memory slice (useful for tests/demos).
type StaticSeedLoader struct {
	quizzes []domain.Quiz
}

func NewStaticSeedLoader(quizzes ...domain.Quiz) *StaticSeedLoader {
	return &StaticSeedLoader{quizzes: quizzes}
}

func (l *StaticSeedLoader) LoadSeed(_ context.Context) ([]domain.Quiz, error) {
	out := make([]domain.Quiz, len(l.quizzes))
	copy(out, l.quizzes)
	return out, nil
}

// YAMLSeedLoader decodes the seed catalog from a YAML document.
type YAMLSeedLoader struct {
	data []byte
}

// NewDefaultSeedLoader returns the built-in sample quizzes.
func NewDefaultSeedLoader() *YAMLSeedLoader {
	return &YAMLSeedLoader{data: defaultSeed}
}

// NewYAMLSeedLoader decodes quizzes from data.
func NewYAMLSeedLoader(data []byte) *YAMLSeedLoader {
	return &YAMLSeedLoader{data: data}
}

// NewFileSeedLoader reads the seed catalog from a YAML file.
func NewFileSeedLoader(path string) (*YAMLSeedLoader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return &YAMLSeedLoader{data: data}, nil
}

func (l *YAMLSeedLoader) LoadSeed(_ context.Context) ([]domain.Quiz, error) {
	var quizzes []domain.Quiz
	if err := yaml.Unmarshal(l.data, &quizzes); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return quizzes, nil
}
