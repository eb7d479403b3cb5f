package postgres

import (
	"context"
	"errors"

	"github.com/contactly/contacthub/internal/domain/contact"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const contactColumns = `contact_id, first_name, last_name, email, phone_number,
		birthday, additional_info, is_verified, created_at, updated_at`

type ContactsRepo struct {
	pool *pgxpool.Pool
}

// constructor function

func NewContactsRepo(pool *pgxpool.Pool) *ContactsRepo {
	return &ContactsRepo{
		pool: pool,
	}
}

func scanContact(row pgx.Row) (contact.Contact, error) {
	var c contact.Contact

	err := row.Scan(
		&c.ID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.PhoneNumber,
		&c.Birthday,
		&c.AdditionalInfo,
		&c.Verified,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	return c, err
}

func (r *ContactsRepo) Create(ctx context.Context, req contact.CreateContactRequest) (contact.Contact, error) {
	c, err := contact.NewFromCreateRequest(req)

	if err != nil {
		return contact.Contact{}, err
	}

	created, err := scanContact(r.pool.QueryRow(ctx,
		`INSERT INTO contacts(first_name, last_name, email, phone_number, birthday, additional_info, is_verified, created_at, updated_at)
		 VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9)
		 RETURNING `+contactColumns,
		c.FirstName, c.LastName, c.Email, c.PhoneNumber, c.Birthday, c.AdditionalInfo, c.Verified, c.CreatedAt, c.UpdatedAt))

	if err != nil {
		return contact.Contact{}, err
	}

	return created, nil
}

func (r *ContactsRepo) List(ctx context.Context, filter contact.ListFilter) ([]contact.Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts`

	var args []interface{}

	// case-insensitive substring match over first name, last name, email
	if filter.Query != nil && *filter.Query != "" {
		query += `
		WHERE first_name ILIKE '%' || $1 || '%'
		   OR last_name ILIKE '%' || $1 || '%'
		   OR email ILIKE '%' || $1 || '%'`
		args = append(args, *filter.Query)
	}

	query += ` ORDER BY contact_id ASC`

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	output := make([]contact.Contact, 0)

	for rows.Next() {
		c, err := scanContact(rows)

		if err != nil {
			return nil, err
		}

		output = append(output, c)
	}

	err = rows.Err()

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *ContactsRepo) GetByID(ctx context.Context, id int64) (contact.Contact, error) {
	c, err := scanContact(r.pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE contact_id = $1`, id))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return contact.Contact{}, contact.ErrNotFound
		}

		return contact.Contact{}, err
	}

	return c, nil
}

func (r *ContactsRepo) Update(ctx context.Context, id int64, req contact.UpdateContactRequest) (contact.Contact, error) {
	// read-modify-write so absent fields keep their stored values
	current, err := r.GetByID(ctx, id)

	if err != nil {
		return contact.Contact{}, err
	}

	if err := current.ApplyUpdate(req); err != nil {
		return contact.Contact{}, err
	}

	updated, err := scanContact(r.pool.QueryRow(
		ctx,
		`UPDATE contacts
			SET first_name = $2,
					last_name = $3,
					email = $4,
					phone_number = $5,
					birthday = $6,
					additional_info = $7,
					updated_at = NOW()
		WHERE contact_id = $1
		RETURNING `+contactColumns,
		id,
		current.FirstName,
		current.LastName,
		current.Email,
		current.PhoneNumber,
		current.Birthday,
		current.AdditionalInfo,
	))

	if err != nil {
		// if there are no rows matching the id
		if errors.Is(err, pgx.ErrNoRows) {
			return contact.Contact{}, contact.ErrNotFound
		}
		// if it is any other type of error
		return contact.Contact{}, err
	}

	return updated, nil
}

func (r *ContactsRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM contacts WHERE contact_id = $1
	`, id)

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}

	return nil
}

// UpcomingBirthdays matches on month-day so the window stays correct
// across year boundaries; keys come from contact.BirthdayWindow.
func (r *ContactsRepo) UpcomingBirthdays(ctx context.Context, monthDayKeys []string) ([]contact.Contact, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+contactColumns+`
		 FROM contacts
		 WHERE birthday IS NOT NULL
		   AND to_char(birthday, 'MMDD') = ANY($1)
		 ORDER BY to_char(birthday, 'MMDD') ASC, contact_id ASC`,
		monthDayKeys)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	output := make([]contact.Contact, 0)

	for rows.Next() {
		c, err := scanContact(rows)

		if err != nil {
			return nil, err
		}

		output = append(output, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return output, nil
}

// MarkVerified flips the verified flag; only an unverified contact matches.
func (r *ContactsRepo) MarkVerified(ctx context.Context, id int64) (contact.Contact, error) {
	c, err := scanContact(r.pool.QueryRow(ctx,
		`UPDATE contacts
		 SET is_verified = TRUE,
		     updated_at = NOW()
		 WHERE contact_id = $1
		   AND is_verified = FALSE
		 RETURNING `+contactColumns, id))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return contact.Contact{}, contact.ErrNotFound
		}

		return contact.Contact{}, err
	}

	return c, nil
}
