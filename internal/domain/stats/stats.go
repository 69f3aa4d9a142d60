// Package stats содержит чистые агрегатные функции над снимком реестра.
// Функции не мутируют вход и не имеют внешних зависимостей.
package stats

import (
	"math"

	"github.com/eduflow/eduflow-registry/internal/domain/record"
)

// DefaultWatchlistThreshold - порог посещаемости (в процентах), ниже
// которого студент попадает в список риска.
const DefaultWatchlistThreshold = 75.0

// AttendancePercent вычисляет процент посещаемости карточки:
// round(100 * present / total). Пустой журнал даёт 0.
func AttendancePercent(r *record.Record) float64 {
	total := len(r.Attendance)
	if total == 0 {
		return 0
	}
	present := 0
	for _, e := range r.Attendance {
		if e.Status == record.StatusPresent {
			present++
		}
	}
	return math.Round(100 * float64(present) / float64(total))
}

// FeeBalance возвращает остаток к оплате: FeesTotal - FeesPaid.
// Переплата даёт отрицательный остаток - значение не ограничивается нулём.
func FeeBalance(r *record.Record) float64 {
	return r.FeesTotal - r.FeesPaid
}

// CohortAverage вычисляет среднее значение числового поля по когорте.
// Пустая когорта даёт 0.
func CohortAverage(records []record.Record, accessor func(*record.Record) float64) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	for i := range records {
		sum += accessor(&records[i])
	}
	return sum / float64(len(records))
}

// WatchlistEntry - студент из списка риска с его фактической посещаемостью.
type WatchlistEntry struct {
	ID                record.StudentID `json:"id"`
	Name              string           `json:"name"`
	AttendancePercent float64          `json:"attendance_percent"`
}

// Watchlist возвращает студентов с посещаемостью СТРОГО ниже порога,
// в порядке реестра. Студенты без отметок имеют 0% и попадают в список.
func Watchlist(records []record.Record, threshold float64) []WatchlistEntry {
	entries := make([]WatchlistEntry, 0)
	for i := range records {
		pct := AttendancePercent(&records[i])
		if pct < threshold {
			entries = append(entries, WatchlistEntry{
				ID:                records[i].ID,
				Name:              records[i].Name,
				AttendancePercent: pct,
			})
		}
	}
	return entries
}

// GroupShare - членство одной группы: число студентов и доля от когорты.
type GroupShare struct {
	Group   string  `json:"group"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// GroupMembership считает членство по каждой группе из словаря меток.
// Доля - от размера когорты; студент может состоять в нескольких группах.
func GroupMembership(records []record.Record, groups []string) []GroupShare {
	shares := make([]GroupShare, 0, len(groups))
	for _, g := range groups {
		count := 0
		for i := range records {
			if records[i].InGroup(g) {
				count++
			}
		}
		pct := 0.0
		if len(records) > 0 {
			pct = math.Round(100 * float64(count) / float64(len(records)))
		}
		shares = append(shares, GroupShare{Group: g, Count: count, Percent: pct})
	}
	return shares
}

// AttendanceBreakdown - суммарные счётчики отметок по когорте.
type AttendanceBreakdown struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Leaves  int `json:"leaves"`
}

// Breakdown суммирует отметки посещаемости по всем карточкам.
func Breakdown(records []record.Record) AttendanceBreakdown {
	var b AttendanceBreakdown
	for i := range records {
		for _, e := range records[i].Attendance {
			switch e.Status {
			case record.StatusPresent:
				b.Present++
			case record.StatusAbsent:
				b.Absent++
			case record.StatusLeave:
				b.Leaves++
			}
		}
	}
	return b
}

// Summary - сводка приборной панели по всей когорте.
type Summary struct {
	CohortSize        int                 `json:"cohort_size"`
	TotalCollected    float64             `json:"total_collected"`
	TotalTarget       float64             `json:"total_target"`
	TotalOutstanding  float64             `json:"total_outstanding"`
	AverageScore      float64             `json:"average_score"`
	AverageAttendance float64             `json:"average_attendance"`
	ClassesLogged     int                 `json:"classes_logged"`
	Attendance        AttendanceBreakdown `json:"attendance"`
}

// Summarize строит сводку по снимку реестра.
func Summarize(records []record.Record) Summary {
	s := Summary{CohortSize: len(records)}
	for i := range records {
		s.TotalCollected += records[i].FeesPaid
		s.TotalTarget += records[i].FeesTotal
		s.ClassesLogged += len(records[i].Attendance)
	}
	s.TotalOutstanding = s.TotalTarget - s.TotalCollected
	s.AverageScore = CohortAverage(records, func(r *record.Record) float64 { return r.Score })
	s.AverageAttendance = CohortAverage(records, AttendancePercent)
	s.Attendance = Breakdown(records)
	return s
}
