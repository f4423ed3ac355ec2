package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"company-registration/backend/internal/company/domain"
)

const uniqueViolation = "23505"

const companyColumns = `id, arabic_name, english_name, email, phone_number, website_url, logo_path,
	password_hash, email_verified, otp_hash, otp_expires_at, created_at, updated_at`

// companyRow is the companies table as scanned by sqlx.
type companyRow struct {
	ID            string         `db:"id"`
	ArabicName    string         `db:"arabic_name"`
	EnglishName   string         `db:"english_name"`
	Email         string         `db:"email"`
	PhoneNumber   sql.NullString `db:"phone_number"`
	WebsiteURL    sql.NullString `db:"website_url"`
	LogoPath      sql.NullString `db:"logo_path"`
	PasswordHash  sql.NullString `db:"password_hash"`
	EmailVerified bool           `db:"email_verified"`
	OTPHash       sql.NullString `db:"otp_hash"`
	OTPExpiresAt  sql.NullTime   `db:"otp_expires_at"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository returns a company repository that uses the given db for persistence.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the company for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	var row companyRow
	err := r.db.GetContext(ctx, &row, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToDomain(&row), nil
}

// GetByEmail returns the company with the given email (exact match), or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.Company, error) {
	var row companyRow
	err := r.db.GetContext(ctx, &row, `SELECT `+companyColumns+` FROM companies WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rowToDomain(&row), nil
}

// Create persists the company. The company must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Company) error {
	row := domainToRow(c)
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO companies (`+companyColumns+`)
		VALUES (:id, :arabic_name, :english_name, :email, :phone_number, :website_url, :logo_path,
			:password_hash, :email_verified, :otp_hash, :otp_expires_at, :created_at, :updated_at)`, row)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// SetPendingOTP replaces the OTP mirror while the company is still unverified.
func (r *PostgresRepository) SetPendingOTP(ctx context.Context, id, otpHash string, expiresAt, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE companies SET otp_hash = $2, otp_expires_at = $3, updated_at = $4
		WHERE id = $1 AND NOT email_verified`, id, otpHash, expiresAt.UTC(), now.UTC())
	return expectOneRow(res, err)
}

// MarkVerified sets email_verified and clears the OTP mirror, only from the unverified state.
func (r *PostgresRepository) MarkVerified(ctx context.Context, id string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE companies SET email_verified = TRUE, otp_hash = NULL, otp_expires_at = NULL, updated_at = $2
		WHERE id = $1 AND NOT email_verified`, id, now.UTC())
	return expectOneRow(res, err)
}

// SetPassword stores the hash, only for a verified company without one.
func (r *PostgresRepository) SetPassword(ctx context.Context, id, passwordHash string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE companies SET password_hash = $2, otp_hash = NULL, otp_expires_at = NULL, updated_at = $3
		WHERE id = $1 AND email_verified AND password_hash IS NULL`, id, passwordHash, now.UTC())
	return expectOneRow(res, err)
}

// expectOneRow maps a conditional update that matched nothing to ErrStateChanged.
func expectOneRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrStateChanged
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func domainToRow(c *domain.Company) *companyRow {
	row := &companyRow{
		ID:            c.ID,
		ArabicName:    c.ArabicName,
		EnglishName:   c.EnglishName,
		Email:         c.Email,
		PhoneNumber:   nullString(c.Phone),
		WebsiteURL:    nullString(c.WebsiteURL),
		LogoPath:      nullString(c.LogoPath),
		PasswordHash:  nullString(c.PasswordHash),
		EmailVerified: c.EmailVerified,
		OTPHash:       nullString(c.OTPHash),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if c.OTPExpiresAt != nil {
		row.OTPExpiresAt = sql.NullTime{Time: *c.OTPExpiresAt, Valid: true}
	}
	return row
}

func rowToDomain(row *companyRow) *domain.Company {
	if row == nil {
		return nil
	}
	c := &domain.Company{
		ID:            row.ID,
		ArabicName:    row.ArabicName,
		EnglishName:   row.EnglishName,
		Email:         row.Email,
		Phone:         row.PhoneNumber.String,
		WebsiteURL:    row.WebsiteURL.String,
		LogoPath:      row.LogoPath.String,
		PasswordHash:  row.PasswordHash.String,
		EmailVerified: row.EmailVerified,
		OTPHash:       row.OTPHash.String,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	if row.OTPExpiresAt.Valid {
		exp := row.OTPExpiresAt.Time
		c.OTPExpiresAt = &exp
	}
	return c
}
