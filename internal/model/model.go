package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type OrganizerStatus string

const (
	OrganizerNone     OrganizerStatus = "none"
	OrganizerPending  OrganizerStatus = "pending"
	OrganizerApproved OrganizerStatus = "approved"
)

type ApplicationStatus string

const (
	StatusApplied    ApplicationStatus = "applied"
	StatusAccepted   ApplicationStatus = "accepted"
	StatusWaitlisted ApplicationStatus = "waitlisted"
	StatusRejected   ApplicationStatus = "rejected"
	StatusCancelled  ApplicationStatus = "cancelled"
)

// PricingOption names one of the six price tiers an applicant can pick:
// full-event with/without food and accommodation, or a per-day rate
// with/without food.
type PricingOption string

const (
	PricingFull                  PricingOption = "full"
	PricingFullFood              PricingOption = "full_food"
	PricingFullAccommodation     PricingOption = "full_accommodation"
	PricingFullFoodAccommodation PricingOption = "full_food_accommodation"
	PricingDaily                 PricingOption = "daily"
	PricingDailyFood             PricingOption = "daily_food"
)

type User struct {
	ID              int64           `db:"id" json:"id"`
	Name            string          `db:"name" json:"name"`
	Surname         string          `db:"surname" json:"surname"`
	Email           string          `db:"email" json:"email"`
	Gender          Gender          `db:"gender" json:"gender"`
	DietaryNeeds    string          `db:"dietary_needs,omitempty" json:"dietary_needs,omitempty"`
	OrganizerStatus OrganizerStatus `db:"organizer_status" json:"organizer_status"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

type Event struct {
	ID             int64      `db:"id" json:"id"`
	OrganizerID    int64      `db:"organizer_id" json:"organizer_id"`
	Name           string     `db:"name" json:"name"`
	Description    string     `db:"description,omitempty" json:"description,omitempty"`
	Location       string     `db:"location,omitempty" json:"location,omitempty"`
	Latitude       *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude      *float64   `db:"longitude" json:"longitude,omitempty"`
	StartTime      time.Time  `db:"start_time" json:"start_time"`
	EndTime        time.Time  `db:"end_time,omitempty" json:"end_time,omitempty"`
	Capacity       int        `db:"capacity" json:"capacity"`
	MaleCapacity   int        `db:"male_capacity" json:"male_capacity"`
	FemaleCapacity int        `db:"female_capacity" json:"female_capacity"`
	IsPublished    bool       `db:"is_published" json:"is_published"`
	Prices         PriceTable `db:"-" json:"prices"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// PriceTable holds the six optional tier prices. A null price means the
// organizer does not offer that tier.
type PriceTable struct {
	Full                  decimal.NullDecimal `db:"price_full" json:"full"`
	FullFood              decimal.NullDecimal `db:"price_full_food" json:"full_food"`
	FullAccommodation     decimal.NullDecimal `db:"price_full_accommodation" json:"full_accommodation"`
	FullFoodAccommodation decimal.NullDecimal `db:"price_full_food_accommodation" json:"full_food_accommodation"`
	Daily                 decimal.NullDecimal `db:"price_daily" json:"daily"`
	DailyFood             decimal.NullDecimal `db:"price_daily_food" json:"daily_food"`
}

// Application is one user's admission record for one event, unique per
// (user, event) pair. TotalPrice is whatever the client submitted; the
// server stores it verbatim and never recomputes it from the price table.
type Application struct {
	ID            int64               `db:"id" json:"id"`
	UserID        int64               `db:"user_id" json:"user_id"`
	EventID       int64               `db:"event_id" json:"event_id"`
	Status        ApplicationStatus   `db:"status" json:"status"`
	PaymentDone   bool                `db:"payment_done" json:"payment_done"`
	PricingOption *PricingOption      `db:"pricing_option" json:"pricing_option,omitempty"`
	NumberOfDays  *int                `db:"number_of_days" json:"number_of_days,omitempty"`
	TotalPrice    decimal.NullDecimal `db:"total_price" json:"total_price"`
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time           `db:"updated_at" json:"updated_at"`
}

// EventCost is one ledger line. Lines are created and deleted, never updated.
type EventCost struct {
	ID          int64           `db:"id" json:"id"`
	EventID     int64           `db:"event_id" json:"event_id"`
	Category    string          `db:"category" json:"category"`
	Description string          `db:"description,omitempty" json:"description,omitempty"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Date        time.Time       `db:"date" json:"date"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// ApplicationWithApplicant is the organizer's review-list row: the
// application joined with the profile fields needed to triage it.
type ApplicationWithApplicant struct {
	Application
	ApplicantName    string `db:"applicant_name" json:"applicant_name"`
	ApplicantSurname string `db:"applicant_surname" json:"applicant_surname"`
	ApplicantEmail   string `db:"applicant_email" json:"applicant_email"`
	ApplicantGender  Gender `db:"applicant_gender" json:"applicant_gender"`
	DietaryNeeds     string `db:"dietary_needs" json:"dietary_needs,omitempty"`
}

// ApplicationWithEvent is the dancer's "my applications" row. AcceptedCount
// is derived at read time from the event's accepted applications.
type ApplicationWithEvent struct {
	Application
	Event         Event `db:"-" json:"event"`
	AcceptedCount int   `db:"accepted_count" json:"accepted_count"`
}

// ApplicationEvent is one audit-trail line, written by the worker that
// consumes application lifecycle messages from the bus.
type ApplicationEvent struct {
	ID            int64     `db:"id" json:"id"`
	ApplicationID int64     `db:"application_id" json:"application_id"`
	EventID       int64     `db:"event_id" json:"event_id"`
	Kind          string    `db:"kind" json:"kind"`
	Detail        string    `db:"detail,omitempty" json:"detail,omitempty"`
	OccurredAt    time.Time `db:"occurred_at" json:"occurred_at"`
}

// ValidPricingOption reports whether s is one of the six tier keys.
func ValidPricingOption(s string) bool {
	switch PricingOption(s) {
	case PricingFull, PricingFullFood, PricingFullAccommodation,
		PricingFullFoodAccommodation, PricingDaily, PricingDailyFood:
		return true
	}
	return false
}
