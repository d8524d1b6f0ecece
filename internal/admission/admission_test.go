package admission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dancereg/internal/model"
)

func TestDecide(t *testing.T) {
	event := &model.Event{Capacity: 10, MaleCapacity: 5, FemaleCapacity: 5}

	tests := []struct {
		name   string
		gender model.Gender
		occ    Occupancy
		want   model.ApplicationStatus
	}{
		{
			name:   "empty event admits male to review queue",
			gender: model.GenderMale,
			occ:    Occupancy{},
			want:   model.StatusApplied,
		},
		{
			name:   "empty event admits female to review queue",
			gender: model.GenderFemale,
			occ:    Occupancy{},
			want:   model.StatusApplied,
		},
		{
			name:   "male quota exhausted waitlists male",
			gender: model.GenderMale,
			occ:    Occupancy{AcceptedMale: 5, AcceptedFemale: 0},
			want:   model.StatusWaitlisted,
		},
		{
			name:   "male quota exhausted does not affect female",
			gender: model.GenderFemale,
			occ:    Occupancy{AcceptedMale: 5, AcceptedFemale: 0},
			want:   model.StatusApplied,
		},
		{
			name:   "female quota exhausted waitlists female",
			gender: model.GenderFemale,
			occ:    Occupancy{AcceptedMale: 0, AcceptedFemale: 5},
			want:   model.StatusWaitlisted,
		},
		{
			name:   "one seat left in quota still applies",
			gender: model.GenderMale,
			occ:    Occupancy{AcceptedMale: 4, AcceptedFemale: 0},
			want:   model.StatusApplied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.gender, tt.occ, event))
		})
	}
}

// Gender quotas can over-promise relative to the total capacity; the
// aggregate check still waitlists once the event is full overall.
func TestDecide_TotalCapacityBinds(t *testing.T) {
	event := &model.Event{Capacity: 6, MaleCapacity: 5, FemaleCapacity: 5}

	occ := Occupancy{AcceptedMale: 3, AcceptedFemale: 3}
	assert.Equal(t, model.StatusWaitlisted, Decide(model.GenderMale, occ, event))
	assert.Equal(t, model.StatusWaitlisted, Decide(model.GenderFemale, occ, event))

	occ = Occupancy{AcceptedMale: 3, AcceptedFemale: 2}
	assert.Equal(t, model.StatusApplied, Decide(model.GenderFemale, occ, event))
}

// capacity=2, maleCapacity=1, femaleCapacity=1, one male accepted: the
// next male is waitlisted while a female still enters the review queue.
func TestDecide_GenderedWaitlistScenario(t *testing.T) {
	event := &model.Event{Capacity: 2, MaleCapacity: 1, FemaleCapacity: 1}
	occ := Occupancy{AcceptedMale: 1}

	assert.Equal(t, model.StatusWaitlisted, Decide(model.GenderMale, occ, event))
	assert.Equal(t, model.StatusApplied, Decide(model.GenderFemale, occ, event))
}

func TestDecide_ZeroQuotaAlwaysWaitlists(t *testing.T) {
	event := &model.Event{Capacity: 10, MaleCapacity: 0, FemaleCapacity: 10}

	assert.Equal(t, model.StatusWaitlisted, Decide(model.GenderMale, Occupancy{}, event))
	assert.Equal(t, model.StatusApplied, Decide(model.GenderFemale, Occupancy{}, event))
}
