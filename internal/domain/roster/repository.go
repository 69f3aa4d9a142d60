package roster

import (
	"context"

	"github.com/eduflow/eduflow-registry/internal/domain/record"
)

// SnapshotStore - контракт хранилища полного снимка реестра.
// Реализации: Redis (основное KV-хранилище) и Postgres (архив).
// Отсутствие сохранённых данных выражается ошибкой shared.ErrNoSnapshot.
type SnapshotStore interface {
	// Load загружает последний сохранённый снимок реестра.
	Load(ctx context.Context) ([]record.Record, error)

	// Save полностью перезаписывает снимок реестра (last-write-wins).
	Save(ctx context.Context, records []record.Record) error
}
