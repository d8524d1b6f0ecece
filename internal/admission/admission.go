// Package admission decides the initial status of a new application
// against an event's gendered capacity limits. The decision runs once,
// at submission time; later organizer transitions never re-check it.
package admission

import (
	"dancereg/internal/model"
)

// Occupancy is the live count of accepted applications for one event,
// split by applicant gender. Only accepted applications occupy seats;
// applied/waitlisted/rejected/cancelled do not.
type Occupancy struct {
	AcceptedMale   int
	AcceptedFemale int
}

func (o Occupancy) Total() int {
	return o.AcceptedMale + o.AcceptedFemale
}

// Decide returns the initial status for an applicant of the given gender.
// The applicant is waitlisted when their gender quota is exhausted or the
// event is full overall; otherwise the application enters the review
// queue as applied. Nothing is ever auto-accepted.
func Decide(gender model.Gender, occ Occupancy, event *model.Event) model.ApplicationStatus {
	switch {
	case gender == model.GenderMale && occ.AcceptedMale >= event.MaleCapacity:
		return model.StatusWaitlisted
	case gender == model.GenderFemale && occ.AcceptedFemale >= event.FemaleCapacity:
		return model.StatusWaitlisted
	case occ.Total() >= event.Capacity:
		return model.StatusWaitlisted
	default:
		return model.StatusApplied
	}
}
