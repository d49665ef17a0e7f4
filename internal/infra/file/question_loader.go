package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"drivetest-quiz/internal/domain"
	"gopkg.in/yaml.v3"
)

// QuestionLoader reads the pool from a bundled .json or .yaml file.
// The document is either a bare list of questions or {"questions": [...]}.
type QuestionLoader struct {
	path string
}

func NewQuestionLoader(path string) *QuestionLoader {
	return &QuestionLoader{path: path}
}

type document struct {
	Questions []domain.Question `json:"questions" yaml:"questions"`
}

func (l *QuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	questions, err := Decode(filepath.Ext(l.path), data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.path, err)
	}
	return questions, nil
}

// Decode parses a question document; ext selects YAML (.yaml, .yml) or JSON.
func Decode(ext string, data []byte) ([]domain.Question, error) {
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		return decodeWith(yaml.Unmarshal, data)
	case ".json", "":
		return decodeWith(json.Unmarshal, data)
	default:
		return nil, fmt.Errorf("unsupported question file type %q", ext)
	}
}

func decodeWith(unmarshal func([]byte, interface{}) error, data []byte) ([]domain.Question, error) {
	var list []domain.Question
	if err := unmarshal(data, &list); err == nil {
		return list, nil
	}
	var doc document
	if err := unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Questions, nil
}
