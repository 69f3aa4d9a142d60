// Package record содержит доменную модель учётной карточки студента EduFlow.
// Это ядро бизнес-логики - внешних зависимостей нет, кроме генератора UUID.
package record

import (
	"strings"

	"github.com/google/uuid"

	"github.com/eduflow/eduflow-registry/internal/domain/shared"
	"github.com/eduflow/eduflow-registry/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// StudentID представляет первичный ключ карточки студента.
// Каноническая форма: без крайних пробелов, в верхнем регистре.
type StudentID string

// NormalizeID приводит сырой идентификатор к канонической форме.
func NormalizeID(raw string) StudentID {
	return StudentID(strings.ToUpper(strings.TrimSpace(raw)))
}

// IsValid проверяет, что идентификатор непустой после нормализации.
func (id StudentID) IsValid() bool {
	return len(strings.TrimSpace(string(id))) > 0
}

// String возвращает строковое представление идентификатора.
func (id StudentID) String() string {
	return string(id)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// AttendanceStatus определяет статус студента на учебной сессии.
type AttendanceStatus string

const (
	// StatusPresent - студент присутствовал.
	StatusPresent AttendanceStatus = "present"
	// StatusAbsent - студент отсутствовал.
	StatusAbsent AttendanceStatus = "absent"
	// StatusLeave - студент отпросился (уважительная причина).
	StatusLeave AttendanceStatus = "leave"
)

// IsValid проверяет, что статус посещаемости корректен.
func (s AttendanceStatus) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLeave:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER ENTRIES
// ══════════════════════════════════════════════════════════════════════════════

// AttendanceEntry - отметка посещаемости за одну дату.
// На каждую дату хранится не более одной отметки.
type AttendanceEntry struct {
	Date   string           `json:"date"`
	Status AttendanceStatus `json:"status"`
}

// PaymentEntry - одна транзакция в платёжной истории.
// История только дополняется; удаление платежей не поддерживается.
type PaymentEntry struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

// DefaultPaymentNote - примечание по умолчанию для платежа без описания.
const DefaultPaymentNote = "Fee payment"

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: RECORD
// ══════════════════════════════════════════════════════════════════════════════

// Record - центральная сущность реестра: учётная карточка студента.
//
// FeesPaid допустимо выставить напрямую через обновление профиля, но
// LogPayment всегда пересчитывает его как сумму всей платёжной истории,
// поэтому при следующем платеже авторитетным становится журнал.
type Record struct {
	// ID - первичный ключ (нормализованный идентификатор студента).
	ID StudentID `json:"id"`

	// Name - полное имя студента (обязательное).
	Name string `json:"name"`

	// Score - академический балл (номинально 0-100, не форсируется).
	Score float64 `json:"score"`

	// AvatarRef - непрозрачная ссылка на аватар (nil = нет аватара).
	AvatarRef *string `json:"avatar_ref,omitempty"`

	// JoinDate - дата зачисления (ISO-строка YYYY-MM-DD).
	JoinDate string `json:"join_date"`

	// BacklogCount - число академических задолженностей.
	BacklogCount int `json:"backlog_count"`

	// Phone - контактный телефон студента.
	Phone string `json:"phone"`

	// Email - контактная почта студента.
	Email string `json:"email"`

	// FeesPaid - сумма внесённой оплаты.
	FeesPaid float64 `json:"fees_paid"`

	// FeesTotal - полная стоимость обучения.
	FeesTotal float64 `json:"fees_total"`

	// GuardianName - имя законного представителя.
	GuardianName string `json:"guardian_name"`

	// GuardianPhone - телефон представителя.
	GuardianPhone string `json:"guardian_phone"`

	// GuardianEmail - почта представителя.
	GuardianEmail string `json:"guardian_email"`

	// Attendance - журнал посещаемости, отсортирован по дате по убыванию.
	Attendance []AttendanceEntry `json:"attendance"`

	// Groups - метки групп, к которым прикреплён студент.
	Groups []string `json:"groups"`

	// Payments - платёжная история (только добавление).
	Payments []PaymentEntry `json:"payment_history"`
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewRecordParams содержит параметры для создания новой карточки.
type NewRecordParams struct {
	ID            string
	Name          string
	Score         float64
	JoinDate      string
	BacklogCount  int
	Phone         string
	Email         string
	FeesPaid      float64
	FeesTotal     float64
	GuardianName  string
	GuardianPhone string
	GuardianEmail string
	Groups        []string
}

// NewRecord создаёт новую карточку с валидацией обязательных полей.
// Идентификатор нормализуется; дата зачисления по умолчанию - сегодня.
func NewRecord(params NewRecordParams) (*Record, error) {
	id := NormalizeID(params.ID)
	if !id.IsValid() {
		return nil, shared.ErrMissingID
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, shared.ErrMissingName
	}

	if params.FeesPaid < 0 || params.FeesTotal < 0 {
		return nil, shared.ErrNegativeFees
	}

	if params.BacklogCount < 0 {
		return nil, shared.ErrNegativeBacklog
	}

	joinDate := strings.TrimSpace(params.JoinDate)
	if joinDate == "" {
		joinDate = timeutil.Today()
	} else if !timeutil.IsValidDay(joinDate) {
		return nil, shared.ErrInvalidDate
	}

	groups := make([]string, len(params.Groups))
	copy(groups, params.Groups)

	return &Record{
		ID:            id,
		Name:          name,
		Score:         params.Score,
		JoinDate:      joinDate,
		BacklogCount:  params.BacklogCount,
		Phone:         strings.TrimSpace(params.Phone),
		Email:         strings.TrimSpace(params.Email),
		FeesPaid:      params.FeesPaid,
		FeesTotal:     params.FeesTotal,
		GuardianName:  strings.TrimSpace(params.GuardianName),
		GuardianPhone: strings.TrimSpace(params.GuardianPhone),
		GuardianEmail: strings.TrimSpace(params.GuardianEmail),
		Attendance:    []AttendanceEntry{},
		Groups:        groups,
		Payments:      []PaymentEntry{},
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// LogAttendance записывает отметку посещаемости за дату.
// Повторная отметка за ту же дату перезаписывает статус (идемпотентно).
// Журнал остаётся отсортированным по дате по убыванию.
func (r *Record) LogAttendance(date string, status AttendanceStatus) error {
	date = strings.TrimSpace(date)
	if !timeutil.IsValidDay(date) {
		return shared.ErrInvalidDate
	}
	if !status.IsValid() {
		return shared.ErrInvalidStatus
	}

	for i := range r.Attendance {
		if r.Attendance[i].Date == date {
			r.Attendance[i].Status = status
			return nil
		}
	}

	// Вставка с сохранением порядка по убыванию: новые даты в начале.
	idx := len(r.Attendance)
	for i := range r.Attendance {
		if timeutil.CompareDays(date, r.Attendance[i].Date) > 0 {
			idx = i
			break
		}
	}
	r.Attendance = append(r.Attendance, AttendanceEntry{})
	copy(r.Attendance[idx+1:], r.Attendance[idx:])
	r.Attendance[idx] = AttendanceEntry{Date: date, Status: status}
	return nil
}

// RemoveAttendance удаляет отметку за дату. Отсутствие отметки - не ошибка.
func (r *Record) RemoveAttendance(date string) {
	date = strings.TrimSpace(date)
	for i := range r.Attendance {
		if r.Attendance[i].Date == date {
			r.Attendance = append(r.Attendance[:i], r.Attendance[i+1:]...)
			return
		}
	}
}

// AttendanceOn возвращает отметку за дату, если она есть.
func (r *Record) AttendanceOn(date string) (AttendanceEntry, bool) {
	for _, e := range r.Attendance {
		if e.Date == date {
			return e, true
		}
	}
	return AttendanceEntry{}, false
}

// LogPayment добавляет транзакцию в платёжную историю.
// Сумма должна быть строго положительной, иначе журнал не меняется.
// FeesPaid пересчитывается как полная сумма истории.
func (r *Record) LogPayment(amount float64, note string) (PaymentEntry, error) {
	if amount <= 0 {
		return PaymentEntry{}, shared.ErrInvalidAmount
	}

	note = strings.TrimSpace(note)
	if note == "" {
		note = DefaultPaymentNote
	}

	entry := PaymentEntry{
		ID:     uuid.NewString(),
		Date:   timeutil.Today(),
		Amount: amount,
		Note:   note,
	}
	r.Payments = append(r.Payments, entry)

	total := 0.0
	for _, p := range r.Payments {
		total += p.Amount
	}
	r.FeesPaid = total

	return entry, nil
}

// ReplaceFields заменяет все изменяемые поля карточки значениями из src,
// сохраняя саму сущность (указатель) на месте. Срезы копируются глубоко.
// Смена ID через этот путь разрешена; проверка коллизий - забота вызывающего.
func (r *Record) ReplaceFields(src *Record) {
	clone := src.Clone()
	*r = *clone
}

// Clone возвращает глубокую копию карточки (включая все срезы).
func (r *Record) Clone() *Record {
	clone := *r

	if r.AvatarRef != nil {
		ref := *r.AvatarRef
		clone.AvatarRef = &ref
	}

	clone.Attendance = make([]AttendanceEntry, len(r.Attendance))
	copy(clone.Attendance, r.Attendance)

	clone.Groups = make([]string, len(r.Groups))
	copy(clone.Groups, r.Groups)

	clone.Payments = make([]PaymentEntry, len(r.Payments))
	copy(clone.Payments, r.Payments)

	return &clone
}

// InGroup проверяет принадлежность студента к группе.
func (r *Record) InGroup(group string) bool {
	for _, g := range r.Groups {
		if g == group {
			return true
		}
	}
	return false
}
