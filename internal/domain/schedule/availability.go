package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	MinSlotDurationMins = 10
	MaxSlotDurationMins = 120

	DefaultSlotDurationMins  = 30
	DefaultMaxPatientsPerDay = 20
)

// Period is one bookable stretch within a day, half-open [Start, End).
type Period struct {
	Enabled bool      `json:"enabled"`
	Start   TimeOfDay `json:"start"`
	End     TimeOfDay `json:"end"`
}

func (p Period) Contains(t TimeOfDay) bool {
	return p.Enabled && t >= p.Start && t < p.End
}

// DaySchedule is the availability template for a single weekday, split into
// the three sub-periods the booking UI groups slots by.
type DaySchedule struct {
	Enabled   bool   `json:"enabled"`
	Morning   Period `json:"morning"`
	Afternoon Period `json:"afternoon"`
	Evening   Period `json:"evening"`
}

func (d DaySchedule) periods() [3]Period {
	return [3]Period{d.Morning, d.Afternoon, d.Evening}
}

// Contains reports whether the time falls inside any enabled period.
func (d DaySchedule) Contains(t TimeOfDay) bool {
	if !d.Enabled {
		return false
	}
	for _, p := range d.periods() {
		if p.Contains(t) {
			return true
		}
	}
	return false
}

func (d DaySchedule) validate() error {
	enabled := make([]Period, 0, 3)
	for _, p := range d.periods() {
		if !p.Enabled {
			continue
		}
		if !p.Start.Valid() || !p.End.Valid() {
			return fmt.Errorf("%w: period bounds outside the day", ErrInvalidConfig)
		}
		if p.Start >= p.End {
			return fmt.Errorf("%w: period start %s is not before end %s", ErrInvalidConfig, p.Start, p.End)
		}
		enabled = append(enabled, p)
	}

	sort.Slice(enabled, func(i, j int) bool { return enabled[i].Start < enabled[j].Start })
	for i := 1; i < len(enabled); i++ {
		if enabled[i].Start < enabled[i-1].End {
			return fmt.Errorf("%w: periods %s-%s and %s-%s overlap", ErrInvalidConfig,
				enabled[i-1].Start, enabled[i-1].End, enabled[i].Start, enabled[i].End)
		}
	}
	return nil
}

// WeeklyTemplate maps a weekday (time.Weekday, Sunday = 0) to its schedule.
// Missing weekdays are treated as closed.
type WeeklyTemplate map[time.Weekday]DaySchedule

func (w WeeklyTemplate) validate() error {
	for day, ds := range w {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("%w: unknown weekday %d", ErrInvalidConfig, day)
		}
		if err := ds.validate(); err != nil {
			return fmt.Errorf("%v (%s)", err, day)
		}
	}
	return nil
}

// BlockedInterval is an ad-hoc closure (vacation, meeting) overriding the
// weekly template for one date. Half-open [Start, End).
type BlockedInterval struct {
	Date   Date      `json:"date"`
	Start  TimeOfDay `json:"start"`
	End    TimeOfDay `json:"end"`
	Reason string    `json:"reason,omitempty"`
}

func (b BlockedInterval) Contains(t TimeOfDay) bool {
	return t >= b.Start && t < b.End
}

func (b BlockedInterval) overlaps(other BlockedInterval) bool {
	return b.Date == other.Date && b.Start < other.End && other.Start < b.End
}

// DoctorAvailability is a doctor's declared schedule: the recurring weekly
// template plus per-date blocked intervals, the slot granularity and the
// daily patient cap. It answers "nominally open?" without reference to
// existing bookings.
type DoctorAvailability struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	DoctorID uuid.UUID `gorm:"column:doctor_id;type:uuid;not null;uniqueIndex" json:"doctor_id"`

	WeeklyTemplate    WeeklyTemplate    `gorm:"column:weekly_template;serializer:json" json:"weekly_template"`
	SlotDurationMins  int               `gorm:"column:slot_duration_mins;not null;default:30" json:"slot_duration_mins"`
	MaxPatientsPerDay int               `gorm:"column:max_patients_per_day;not null;default:20" json:"max_patients_per_day"`
	BlockedIntervals  []BlockedInterval `gorm:"column:blocked_intervals;serializer:json" json:"blocked_intervals"`
}

func (DoctorAvailability) TableName() string {
	return "scheduling.doctor_availabilities"
}

// NewDefault is the availability created alongside a doctor account:
// weekday mornings and afternoons open, evenings and weekends closed.
func NewDefault(doctorID uuid.UUID) *DoctorAvailability {
	workday := DaySchedule{
		Enabled:   true,
		Morning:   Period{Enabled: true, Start: NewTimeOfDay(9, 0), End: NewTimeOfDay(12, 0)},
		Afternoon: Period{Enabled: true, Start: NewTimeOfDay(13, 0), End: NewTimeOfDay(17, 0)},
	}
	template := WeeklyTemplate{}
	for day := time.Monday; day <= time.Friday; day++ {
		template[day] = workday
	}
	return &DoctorAvailability{
		DoctorID:          doctorID,
		WeeklyTemplate:    template,
		SlotDurationMins:  DefaultSlotDurationMins,
		MaxPatientsPerDay: DefaultMaxPatientsPerDay,
	}
}

// DayFor resolves the weekly template entry for a calendar date.
func (a *DoctorAvailability) DayFor(date Date) DaySchedule {
	return a.WeeklyTemplate[date.Weekday()]
}

// IsOpen reports whether the doctor is nominally open at the given date and
// time: inside an enabled period of the weekly template and not inside any
// blocked interval for that date. Existing bookings are not consulted.
func (a *DoctorAvailability) IsOpen(date Date, t TimeOfDay) bool {
	if !a.DayFor(date).Contains(t) {
		return false
	}
	for _, b := range a.BlockedIntervals {
		if b.Date == date && b.Contains(t) {
			return false
		}
	}
	return true
}

func (a *DoctorAvailability) slotStep() int {
	if a.SlotDurationMins <= 0 {
		return DefaultSlotDurationMins
	}
	return a.SlotDurationMins
}

// IsBookable reports whether t is a valid booking target: open per IsOpen
// AND a slot-generator candidate. An off-grid time inside an open period
// (say 9:17 on a 30-minute grid) must be rejected, otherwise it would
// wall-clock-overlap the 9:00 candidate while the ledger, which keys the
// exact minute, happily holds both.
func (a *DoctorAvailability) IsBookable(date Date, t TimeOfDay) bool {
	if !a.IsOpen(date, t) {
		return false
	}
	step := a.slotStep()
	for _, p := range a.DayFor(date).periods() {
		if p.Contains(t) {
			return int(t-p.Start)%step == 0 && t.Add(step) <= p.End
		}
	}
	return false
}

func (a *DoctorAvailability) SetWeeklyTemplate(template WeeklyTemplate) error {
	if err := template.validate(); err != nil {
		return err
	}
	a.WeeklyTemplate = template
	return nil
}

func (a *DoctorAvailability) SetDaySchedule(day time.Weekday, ds DaySchedule) error {
	if day < time.Sunday || day > time.Saturday {
		return fmt.Errorf("%w: unknown weekday %d", ErrInvalidConfig, day)
	}
	if err := ds.validate(); err != nil {
		return err
	}
	if a.WeeklyTemplate == nil {
		a.WeeklyTemplate = WeeklyTemplate{}
	}
	a.WeeklyTemplate[day] = ds
	return nil
}

func (a *DoctorAvailability) SetSlotDuration(minutes int) error {
	if minutes < MinSlotDurationMins || minutes > MaxSlotDurationMins {
		return fmt.Errorf("%w: slot duration must be between %d and %d minutes",
			ErrInvalidConfig, MinSlotDurationMins, MaxSlotDurationMins)
	}
	a.SlotDurationMins = minutes
	return nil
}

func (a *DoctorAvailability) SetMaxPatientsPerDay(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: max patients per day must not be negative", ErrInvalidConfig)
	}
	a.MaxPatientsPerDay = n
	return nil
}

// AddBlockedInterval inserts a new closure, rejecting overlaps with existing
// intervals on the same date. Intervals stay sorted by date then start time.
func (a *DoctorAvailability) AddBlockedInterval(b BlockedInterval) error {
	if b.Date.IsZero() {
		return fmt.Errorf("%w: blocked interval needs a date", ErrInvalidConfig)
	}
	if !b.Start.Valid() || !b.End.Valid() || b.Start >= b.End {
		return fmt.Errorf("%w: blocked interval start %s is not before end %s",
			ErrInvalidConfig, b.Start, b.End)
	}
	for _, existing := range a.BlockedIntervals {
		if b.overlaps(existing) {
			return fmt.Errorf("%w: %s %s-%s", ErrOverlappingBlock, b.Date, b.Start, b.End)
		}
	}
	a.BlockedIntervals = append(a.BlockedIntervals, b)
	sort.Slice(a.BlockedIntervals, func(i, j int) bool {
		bi, bj := a.BlockedIntervals[i], a.BlockedIntervals[j]
		if bi.Date != bj.Date {
			return bi.Date.midnight().Before(bj.Date.midnight())
		}
		return bi.Start < bj.Start
	})
	return nil
}

// RemoveBlockedInterval deletes the interval with the given date and start.
func (a *DoctorAvailability) RemoveBlockedInterval(date Date, start TimeOfDay) error {
	for i, b := range a.BlockedIntervals {
		if b.Date == date && b.Start == start {
			a.BlockedIntervals = append(a.BlockedIntervals[:i], a.BlockedIntervals[i+1:]...)
			return nil
		}
	}
	return ErrBlockNotFound
}
