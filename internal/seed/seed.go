// Package seed creates the default data the application expects at startup:
// the course catalog and an initial admin account.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/mertcakir/coursereg/internal/pkg/auth"
	"github.com/mertcakir/coursereg/internal/pkg/dberrors"
)

type defaultCourse struct {
	name        string
	description string
	duration    string
	price       float64
}

var defaultCourses = []defaultCourse{
	{"Go Fundamentals", "Language basics, tooling and testing", "6 weeks", 1500},
	{"Web Development with Gin", "REST APIs, middleware and templating", "8 weeks", 2000},
	{"PostgreSQL for Developers", "Schema design, queries and performance", "6 weeks", 1800},
	{"Docker & Deployment", "Containers, compose and CI pipelines", "4 weeks", 1200},
	{"Data Structures & Algorithms", "Core CS with practical exercises", "10 weeks", 2500},
}

const (
	defaultAdminName  = "Administrator"
	defaultAdminEmail = "admin@coursereg.local"
)

// CreateDefaultData seeds the course catalog and the default admin account.
// Existing rows are left untouched, so the seed is safe to run on every start.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	sb := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	var finalErr error

	lgr.Info().Msg("Checking/Creating default data (courses, admin)...")

	for _, c := range defaultCourses {
		sqlQuery, args, err := sb.Insert("courses").
			Columns("name", "description", "duration", "price").
			Values(c.name, c.description, c.duration, c.price).
			Suffix("ON CONFLICT ON CONSTRAINT courses_name_key DO NOTHING").
			ToSql()
		if err != nil {
			finalErr = errors.Join(finalErr, err)
			continue
		}
		if _, err := dbPool.Exec(ctx, sqlQuery, args...); err != nil {
			lgr.Error().Err(err).Str("course", c.name).Msg("Error seeding course")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if err := createDefaultAdmin(ctx, dbPool, sb, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	return finalErr
}

func createDefaultAdmin(ctx context.Context, dbPool *pgxpool.Pool, sb squirrel.StatementBuilderType, lgr zerolog.Logger) error {
	var exists bool
	err := dbPool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM admins WHERE email = $1)`, defaultAdminEmail).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check default admin: %w", err)
	}
	if exists {
		return nil
	}

	password := os.Getenv("ADMIN_DEFAULT_PASSWORD")
	if password == "" {
		password = "changeme123"
		lgr.Warn().Msg("ADMIN_DEFAULT_PASSWORD not set, using insecure default; change it immediately")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash default admin password: %w", err)
	}

	sqlQuery, args, err := sb.Insert("admins").
		Columns("name", "email", "password").
		Values(defaultAdminName, defaultAdminEmail, hash).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := dbPool.Exec(ctx, sqlQuery, args...); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return nil
		}
		return fmt.Errorf("failed to create default admin: %w", err)
	}

	lgr.Info().Str("email", defaultAdminEmail).Msg("Default admin account created")
	return nil
}
