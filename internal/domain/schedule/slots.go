package schedule

// SlotBuckets holds candidate slot start times for one date, partitioned the
// way the booking UI groups them. Slices are never nil so the API renders
// empty arrays rather than null.
type SlotBuckets struct {
	Morning   []TimeOfDay `json:"morning"`
	Afternoon []TimeOfDay `json:"afternoon"`
	Evening   []TimeOfDay `json:"evening"`
}

func emptyBuckets() SlotBuckets {
	return SlotBuckets{
		Morning:   []TimeOfDay{},
		Afternoon: []TimeOfDay{},
		Evening:   []TimeOfDay{},
	}
}

// All concatenates the buckets in chronological order.
func (s SlotBuckets) All() []TimeOfDay {
	all := make([]TimeOfDay, 0, len(s.Morning)+len(s.Afternoon)+len(s.Evening))
	all = append(all, s.Morning...)
	all = append(all, s.Afternoon...)
	return append(all, s.Evening...)
}

// Filter returns a copy keeping only the slot times the predicate accepts.
func (s SlotBuckets) Filter(keep func(TimeOfDay) bool) SlotBuckets {
	filter := func(in []TimeOfDay) []TimeOfDay {
		out := make([]TimeOfDay, 0, len(in))
		for _, t := range in {
			if keep(t) {
				out = append(out, t)
			}
		}
		return out
	}
	return SlotBuckets{
		Morning:   filter(s.Morning),
		Afternoon: filter(s.Afternoon),
		Evening:   filter(s.Evening),
	}
}

// SlotsFor expands the weekly template for a date into candidate slot start
// times. Pure and deterministic: blocked intervals and existing bookings are
// not consulted here, callers filter candidates with IsOpen and the ledger.
// A slot is emitted only when it fits entirely before the period end, so
// partial trailing slots are dropped.
func (a *DoctorAvailability) SlotsFor(date Date) SlotBuckets {
	day := a.DayFor(date)
	if !day.Enabled {
		return emptyBuckets()
	}
	step := a.slotStep()
	return SlotBuckets{
		Morning:   expandPeriod(day.Morning, step),
		Afternoon: expandPeriod(day.Afternoon, step),
		Evening:   expandPeriod(day.Evening, step),
	}
}

func expandPeriod(p Period, stepMins int) []TimeOfDay {
	slots := []TimeOfDay{}
	if !p.Enabled {
		return slots
	}
	for start := p.Start; start.Add(stepMins) <= p.End; start = start.Add(stepMins) {
		slots = append(slots, start)
	}
	return slots
}
