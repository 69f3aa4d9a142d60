// Package labels содержит словарь групповых меток реестра.
// Словарь независим от карточек: удаление метки НЕ каскадируется
// на студентов - висячие ссылки в карточках остаются как есть.
package labels

import (
	"context"
	"strings"

	"github.com/eduflow/eduflow-registry/internal/domain/shared"
)

// DefaultGroups - стартовый словарь для пустого хранилища.
func DefaultGroups() []string {
	return []string{
		"Honors Program",
		"Exchange Students",
		"Sports Quota",
		"Library Assistant",
	}
}

// Vocabulary - упорядоченный набор уникальных меток.
// Не потокобезопасен: сериализацию обеспечивает слой приложения.
type Vocabulary struct {
	names []string
}

// New создаёт словарь с данными метками (без проверки дублей - для загрузки).
func New(names []string) *Vocabulary {
	v := &Vocabulary{names: make([]string, len(names))}
	copy(v.names, names)
	return v
}

// Default создаёт словарь со стартовыми группами.
func Default() *Vocabulary {
	return New(DefaultGroups())
}

// Contains проверяет наличие метки (точное совпадение).
func (v *Vocabulary) Contains(name string) bool {
	for _, n := range v.names {
		if n == name {
			return true
		}
	}
	return false
}

// Add добавляет метку. Пустая или уже существующая метка - ошибка валидации.
func (v *Vocabulary) Add(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.ErrLabelEmpty
	}
	if v.Contains(name) {
		return shared.ErrLabelExists
	}
	v.names = append(v.names, name)
	return nil
}

// Remove удаляет метку из словаря. Карточки студентов не трогаются.
func (v *Vocabulary) Remove(name string) error {
	for i, n := range v.names {
		if n == name {
			v.names = append(v.names[:i], v.names[i+1:]...)
			return nil
		}
	}
	return shared.ErrLabelNotFound
}

// List возвращает копию меток в порядке добавления.
func (v *Vocabulary) List() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Replace полностью заменяет содержимое словаря (bulk-загрузка).
func (v *Vocabulary) Replace(names []string) {
	v.names = make([]string, len(names))
	copy(v.names, names)
}

// Store - контракт хранилища словаря меток.
type Store interface {
	// LoadLabels загружает сохранённый словарь; отсутствие данных -
	// shared.ErrNoSnapshot.
	LoadLabels(ctx context.Context) ([]string, error)

	// SaveLabels полностью перезаписывает словарь.
	SaveLabels(ctx context.Context, names []string) error
}
