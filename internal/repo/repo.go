package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"dancereg/internal/admission"
	"dancereg/internal/model"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrCostNotFound         = errors.New("cost not found")
	ErrDuplicateApplication = errors.New("duplicate application")
)

// uniqueViolation is the postgres error code raised by the
// (user_id, event_id) unique constraint on applications.
const uniqueViolation = "23505"

type Repository interface {
	GetUserByID(ctx context.Context, id int64) (*model.User, error)

	CreateEvent(ctx context.Context, e *model.Event) (int64, error)
	GetEventByID(ctx context.Context, id int64) (*model.Event, error)
	GetPublishedEvents(ctx context.Context) ([]model.Event, error)
	UpdateEventCoordinates(ctx context.Context, id int64, lat, lng float64) (*model.Event, error)

	CreateApplication(ctx context.Context, a *model.Application) (*model.Application, error)
	GetApplicationByID(ctx context.Context, id int64) (*model.Application, error)
	GetEventApplications(ctx context.Context, eventID int64) ([]model.Application, error)
	GetApplicationsWithApplicants(ctx context.Context, eventID int64) ([]model.ApplicationWithApplicant, error)
	GetUserApplications(ctx context.Context, userID int64) ([]model.ApplicationWithEvent, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status model.ApplicationStatus) (*model.Application, error)
	UpdateApplicationPayment(ctx context.Context, id int64, paymentDone bool) (*model.Application, error)
	CountAcceptedApplications(ctx context.Context, eventID int64) (admission.Occupancy, error)
	CountAccepted(ctx context.Context, eventID int64) (int, error)

	CreateCost(ctx context.Context, c *model.EventCost) (int64, error)
	GetCostByID(ctx context.Context, id int64) (*model.EventCost, error)
	GetEventCosts(ctx context.Context, eventID int64) ([]model.EventCost, error)
	DeleteCost(ctx context.Context, id int64) (*model.EventCost, error)

	InsertApplicationEvent(ctx context.Context, ev *model.ApplicationEvent) error

	MigrateUp(migrationsDir string) error
	MigrateDown(migrationsDir string) error
}

type repository struct {
	db  *dbpg.DB
	log *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, log: log}, nil
}

func (r *repository) MigrateUp(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migration files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations applied successfully from %s", migrationsDir)
	return nil
}

func (r *repository) MigrateDown(migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.down.sql"))
	if err != nil {
		return fmt.Errorf("failed to read rollback files: %w", err)
	}

	for _, file := range files {
		sqlBytes, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read rollback file %s: %w", file, err)
		}

		if _, err := r.db.ExecContext(context.Background(), string(sqlBytes)); err != nil {
			return fmt.Errorf("failed to rollback migration %s: %w", file, err)
		}
	}

	r.log.Info().Msgf("Migrations rolled back successfully from %s", migrationsDir)
	return nil
}

func (r *repository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, name, surname, email, gender, dietary_needs, organizer_status, created_at, updated_at
		FROM users WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	var u model.User
	if err := row.Scan(
		&u.ID, &u.Name, &u.Surname, &u.Email, &u.Gender,
		&u.DietaryNeeds, &u.OrganizerStatus, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

const eventColumns = `
	id, organizer_id, name, description, location, latitude, longitude,
	start_time, end_time, capacity, male_capacity, female_capacity, is_published,
	price_full, price_full_food, price_full_accommodation, price_full_food_accommodation,
	price_daily, price_daily_food, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID, &e.OrganizerID, &e.Name, &e.Description, &e.Location,
		&e.Latitude, &e.Longitude, &e.StartTime, &e.EndTime,
		&e.Capacity, &e.MaleCapacity, &e.FemaleCapacity, &e.IsPublished,
		&e.Prices.Full, &e.Prices.FullFood, &e.Prices.FullAccommodation,
		&e.Prices.FullFoodAccommodation, &e.Prices.Daily, &e.Prices.DailyFood,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) CreateEvent(ctx context.Context, e *model.Event) (int64, error) {
	query := `
		INSERT INTO events (
			organizer_id, name, description, location, start_time, end_time,
			capacity, male_capacity, female_capacity, is_published,
			price_full, price_full_food, price_full_accommodation,
			price_full_food_accommodation, price_daily, price_daily_food
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	row := r.db.QueryRowContext(ctx, query,
		e.OrganizerID, e.Name, e.Description, e.Location, e.StartTime, e.EndTime,
		e.Capacity, e.MaleCapacity, e.FemaleCapacity, e.IsPublished,
		e.Prices.Full, e.Prices.FullFood, e.Prices.FullAccommodation,
		e.Prices.FullFoodAccommodation, e.Prices.Daily, e.Prices.DailyFood,
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}
	return id, nil
}

func (r *repository) GetEventByID(ctx context.Context, id int64) (*model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return e, nil
}

func (r *repository) GetPublishedEvents(ctx context.Context) ([]model.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE is_published ORDER BY start_time ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (r *repository) UpdateEventCoordinates(ctx context.Context, id int64, lat, lng float64) (*model.Event, error) {
	query := `
		UPDATE events
		SET latitude = $1, longitude = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + eventColumns

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, lat, lng, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to update event coordinates: %w", err)
	}
	return e, nil
}

const applicationColumns = `
	id, user_id, event_id, status, payment_done,
	pricing_option, number_of_days, total_price, created_at, updated_at
`

func scanApplication(row rowScanner) (*model.Application, error) {
	var a model.Application
	var pricing sql.NullString
	err := row.Scan(
		&a.ID, &a.UserID, &a.EventID, &a.Status, &a.PaymentDone,
		&pricing, &a.NumberOfDays, &a.TotalPrice, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if pricing.Valid {
		opt := model.PricingOption(pricing.String)
		a.PricingOption = &opt
	}
	return &a, nil
}

func (r *repository) CreateApplication(ctx context.Context, a *model.Application) (*model.Application, error) {
	query := `
		INSERT INTO applications (user_id, event_id, status, payment_done, pricing_option, number_of_days, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + applicationColumns

	var pricing *string
	if a.PricingOption != nil {
		s := string(*a.PricingOption)
		pricing = &s
	}

	created, err := scanApplication(r.db.QueryRowContext(ctx, query,
		a.UserID, a.EventID, a.Status, a.PaymentDone, pricing, a.NumberOfDays, a.TotalPrice,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrDuplicateApplication
		}
		return nil, fmt.Errorf("failed to insert application: %w", err)
	}
	return created, nil
}

func (r *repository) GetApplicationByID(ctx context.Context, id int64) (*model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	a, err := scanApplication(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return a, nil
}

func (r *repository) GetEventApplications(ctx context.Context, eventID int64) ([]model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE event_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get applications: %w", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

func (r *repository) GetApplicationsWithApplicants(ctx context.Context, eventID int64) ([]model.ApplicationWithApplicant, error) {
	query := `
		SELECT a.id, a.user_id, a.event_id, a.status, a.payment_done,
		       a.pricing_option, a.number_of_days, a.total_price, a.created_at, a.updated_at,
		       u.name, u.surname, u.email, u.gender, u.dietary_needs
		FROM applications a
		JOIN users u ON u.id = a.user_id
		WHERE a.event_id = $1
		ORDER BY a.created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get applications: %w", err)
	}
	defer rows.Close()

	var apps []model.ApplicationWithApplicant
	for rows.Next() {
		var a model.ApplicationWithApplicant
		var pricing sql.NullString
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.EventID, &a.Status, &a.PaymentDone,
			&pricing, &a.NumberOfDays, &a.TotalPrice, &a.CreatedAt, &a.UpdatedAt,
			&a.ApplicantName, &a.ApplicantSurname, &a.ApplicantEmail,
			&a.ApplicantGender, &a.DietaryNeeds,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		if pricing.Valid {
			opt := model.PricingOption(pricing.String)
			a.PricingOption = &opt
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *repository) GetUserApplications(ctx context.Context, userID int64) ([]model.ApplicationWithEvent, error) {
	query := `
		SELECT a.id, a.user_id, a.event_id, a.status, a.payment_done,
		       a.pricing_option, a.number_of_days, a.total_price, a.created_at, a.updated_at,
		       e.id, e.organizer_id, e.name, e.description, e.location, e.latitude, e.longitude,
		       e.start_time, e.end_time, e.capacity, e.male_capacity, e.female_capacity, e.is_published,
		       e.price_full, e.price_full_food, e.price_full_accommodation, e.price_full_food_accommodation,
		       e.price_daily, e.price_daily_food, e.created_at, e.updated_at,
		       (SELECT COUNT(*) FROM applications x WHERE x.event_id = e.id AND x.status = 'accepted') AS accepted_count
		FROM applications a
		JOIN events e ON e.id = a.event_id
		WHERE a.user_id = $1
		ORDER BY a.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get applications: %w", err)
	}
	defer rows.Close()

	var apps []model.ApplicationWithEvent
	for rows.Next() {
		var a model.ApplicationWithEvent
		var pricing sql.NullString
		e := &a.Event
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.EventID, &a.Status, &a.PaymentDone,
			&pricing, &a.NumberOfDays, &a.TotalPrice, &a.CreatedAt, &a.UpdatedAt,
			&e.ID, &e.OrganizerID, &e.Name, &e.Description, &e.Location, &e.Latitude, &e.Longitude,
			&e.StartTime, &e.EndTime, &e.Capacity, &e.MaleCapacity, &e.FemaleCapacity, &e.IsPublished,
			&e.Prices.Full, &e.Prices.FullFood, &e.Prices.FullAccommodation, &e.Prices.FullFoodAccommodation,
			&e.Prices.Daily, &e.Prices.DailyFood, &e.CreatedAt, &e.UpdatedAt,
			&a.AcceptedCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		if pricing.Valid {
			opt := model.PricingOption(pricing.String)
			a.PricingOption = &opt
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *repository) UpdateApplicationStatus(ctx context.Context, id int64, status model.ApplicationStatus) (*model.Application, error) {
	query := `
		UPDATE applications
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + applicationColumns

	a, err := scanApplication(r.db.QueryRowContext(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}
	return a, nil
}

func (r *repository) UpdateApplicationPayment(ctx context.Context, id int64, paymentDone bool) (*model.Application, error) {
	query := `
		UPDATE applications
		SET payment_done = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + applicationColumns

	a, err := scanApplication(r.db.QueryRowContext(ctx, query, paymentDone, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	return a, nil
}

// CountAcceptedApplications derives the live gendered occupancy for an
// event. Occupancy is never stored on the event row; it is always
// recounted from accepted applications.
func (r *repository) CountAcceptedApplications(ctx context.Context, eventID int64) (admission.Occupancy, error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE u.gender = 'male'),
		       COUNT(*) FILTER (WHERE u.gender = 'female')
		FROM applications a
		JOIN users u ON u.id = a.user_id
		WHERE a.event_id = $1 AND a.status = 'accepted'
	`

	var occ admission.Occupancy
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(&occ.AcceptedMale, &occ.AcceptedFemale); err != nil {
		return admission.Occupancy{}, fmt.Errorf("failed to count accepted applications: %w", err)
	}
	return occ, nil
}

func (r *repository) CountAccepted(ctx context.Context, eventID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM applications
		WHERE event_id = $1 AND status = 'accepted'
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, eventID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accepted applications: %w", err)
	}
	return count, nil
}

func (r *repository) CreateCost(ctx context.Context, c *model.EventCost) (int64, error) {
	query := `
		INSERT INTO event_costs (event_id, category, description, amount, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	row := r.db.QueryRowContext(ctx, query, c.EventID, c.Category, c.Description, c.Amount, c.Date)
	if err := row.Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to insert cost: %w", err)
	}
	return id, nil
}

func (r *repository) GetCostByID(ctx context.Context, id int64) (*model.EventCost, error) {
	query := `
		SELECT id, event_id, category, description, amount, date, created_at
		FROM event_costs WHERE id = $1
	`

	var c model.EventCost
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&c.ID, &c.EventID, &c.Category, &c.Description, &c.Amount, &c.Date, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCostNotFound
		}
		return nil, fmt.Errorf("failed to get cost: %w", err)
	}
	return &c, nil
}

func (r *repository) GetEventCosts(ctx context.Context, eventID int64) ([]model.EventCost, error) {
	query := `
		SELECT id, event_id, category, description, amount, date, created_at
		FROM event_costs
		WHERE event_id = $1
		ORDER BY date ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get costs: %w", err)
	}
	defer rows.Close()

	var costs []model.EventCost
	for rows.Next() {
		var c model.EventCost
		if err := rows.Scan(&c.ID, &c.EventID, &c.Category, &c.Description, &c.Amount, &c.Date, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cost: %w", err)
		}
		costs = append(costs, c)
	}
	return costs, rows.Err()
}

func (r *repository) DeleteCost(ctx context.Context, id int64) (*model.EventCost, error) {
	query := `
		DELETE FROM event_costs
		WHERE id = $1
		RETURNING id, event_id, category, description, amount, date, created_at
	`

	var c model.EventCost
	row := r.db.QueryRowContext(ctx, query, id)
	if err := row.Scan(&c.ID, &c.EventID, &c.Category, &c.Description, &c.Amount, &c.Date, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCostNotFound
		}
		return nil, fmt.Errorf("failed to delete cost: %w", err)
	}
	return &c, nil
}

func (r *repository) InsertApplicationEvent(ctx context.Context, ev *model.ApplicationEvent) error {
	query := `
		INSERT INTO application_events (application_id, event_id, kind, detail, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.ExecContext(ctx, query, ev.ApplicationID, ev.EventID, ev.Kind, ev.Detail, ev.OccurredAt); err != nil {
		return fmt.Errorf("failed to insert application event: %w", err)
	}
	return nil
}
