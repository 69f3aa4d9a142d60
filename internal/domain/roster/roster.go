// Package roster содержит упорядоченную коллекцию карточек студентов.
// Порядок вставки сохраняется и является видимым состоянием: сортировка
// физически переставляет элементы, а не строит представление.
package roster

import (
	"sort"
	"strings"

	"github.com/eduflow/eduflow-registry/internal/domain/record"
)

// ══════════════════════════════════════════════════════════════════════════════
// SORT FIELDS
// ══════════════════════════════════════════════════════════════════════════════

// SortField - перечислимое поле, по которому можно сортировать реестр.
type SortField string

const (
	SortByID        SortField = "id"
	SortByName      SortField = "name"
	SortByScore     SortField = "score"
	SortByJoinDate  SortField = "joinDate"
	SortByBacklog   SortField = "backlog"
	SortByFeesPaid  SortField = "feesPaid"
	SortByFeesTotal SortField = "feesTotal"
)

// IsValid проверяет, что поле сортировки входит в допустимый набор.
func (f SortField) IsValid() bool {
	switch f {
	case SortByID, SortByName, SortByScore, SortByJoinDate,
		SortByBacklog, SortByFeesPaid, SortByFeesTotal:
		return true
	default:
		return false
	}
}

// ParseSortField разбирает строку в SortField.
func ParseSortField(s string) (SortField, bool) {
	f := SortField(strings.TrimSpace(s))
	return f, f.IsValid()
}

// stringKey возвращает строковый ключ сортировки карточки, если поле строковое.
func (f SortField) stringKey(r *record.Record) (string, bool) {
	switch f {
	case SortByID:
		return string(r.ID), true
	case SortByName:
		return r.Name, true
	case SortByJoinDate:
		return r.JoinDate, true
	default:
		return "", false
	}
}

// numericKey возвращает числовой ключ сортировки карточки, если поле числовое.
func (f SortField) numericKey(r *record.Record) (float64, bool) {
	switch f {
	case SortByScore:
		return r.Score, true
	case SortByBacklog:
		return float64(r.BacklogCount), true
	case SortByFeesPaid:
		return r.FeesPaid, true
	case SortByFeesTotal:
		return r.FeesTotal, true
	default:
		return 0, false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER
// ══════════════════════════════════════════════════════════════════════════════

// Roster - реестр карточек. Не потокобезопасен: сериализацию мутаций
// обеспечивает слой приложения.
type Roster struct {
	records []*record.Record
}

// New создаёт пустой реестр.
func New() *Roster {
	return &Roster{records: make([]*record.Record, 0)}
}

// Len возвращает число карточек в реестре.
func (rs *Roster) Len() int {
	return len(rs.records)
}

// Insert добавляет карточку в конец реестра.
// Уникальность идентификатора НЕ проверяется - это обязанность вызывающего.
func (rs *Roster) Insert(r *record.Record) {
	rs.records = append(rs.records, r)
}

// Search находит первую карточку с данным идентификатором (линейный проход).
// Сырой идентификатор нормализуется перед сравнением.
func (rs *Roster) Search(rawID string) (*record.Record, bool) {
	id := record.NormalizeID(rawID)
	for _, r := range rs.records {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// Update заменяет все изменяемые поля найденной карточки данными из data,
// сохраняя идентичность сущности. Возвращает false, если карточка не найдена.
// Смена ID через этот путь разрешена; проверку коллизий делает вызывающий.
func (rs *Roster) Update(rawID string, data *record.Record) bool {
	r, ok := rs.Search(rawID)
	if !ok {
		return false
	}
	r.ReplaceFields(data)
	return true
}

// Delete удаляет первую карточку с данным идентификатором,
// сохраняя относительный порядок остальных. Возвращает false, если не найдена.
func (rs *Roster) Delete(rawID string) bool {
	id := record.NormalizeID(rawID)
	for i, r := range rs.records {
		if r.ID == id {
			rs.records = append(rs.records[:i], rs.records[i+1:]...)
			return true
		}
	}
	return false
}

// Sort стабильно сортирует реестр по полю. Строковые поля сравниваются
// без учёта регистра. Переставляются слоты, а не значения полей: ссылка
// на карточку, полученная через Search, после сортировки указывает на
// того же студента.
func (rs *Roster) Sort(field SortField, ascending bool) bool {
	if !field.IsValid() {
		return false
	}

	// cmp: -1/0/1. Равные элементы не меняются местами ни в одном
	// направлении - стабильность сохраняется и при убывании.
	cmp := func(a, b *record.Record) int {
		if ka, ok := field.stringKey(a); ok {
			kb, _ := field.stringKey(b)
			return strings.Compare(strings.ToLower(ka), strings.ToLower(kb))
		}
		ka, _ := field.numericKey(a)
		kb, _ := field.numericKey(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		default:
			return 0
		}
	}

	sort.SliceStable(rs.records, func(i, j int) bool {
		c := cmp(rs.records[i], rs.records[j])
		if ascending {
			return c < 0
		}
		return c > 0
	})
	return true
}

// ToSequence возвращает глубокие копии карточек в текущем порядке реестра.
func (rs *Roster) ToSequence() []record.Record {
	seq := make([]record.Record, 0, len(rs.records))
	for _, r := range rs.records {
		seq = append(seq, *r.Clone())
	}
	return seq
}

// BulkLoad очищает реестр и вставляет карточки в порядке входной
// последовательности. Дубликаты идентификаторов сохраняются как есть:
// поздние дубли остаются в реестре, но недостижимы через Search.
func (rs *Roster) BulkLoad(seq []record.Record) {
	rs.records = make([]*record.Record, 0, len(seq))
	for i := range seq {
		r := seq[i]
		rs.Insert(r.Clone())
	}
}
