// Package postgresdb provides the PostgreSQL-backed implementation of the
// storage interface for users and blog posts. Schema management is done
// with goose migrations on startup; all operations are single parameterized
// statements.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/patric-chuzhbe/miniblog/internal/models"
)

// pgUniqueViolation is the PostgreSQL error code raised when an insert
// breaks a unique constraint (duplicate username).
const pgUniqueViolation = "23505"

// PostgresDB is a PostgreSQL-backed implementation of the blog storage.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset drops every table in the public schema before running
// migrations. It exists for test setups only.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New connects to PostgreSQL, optionally resets the schema, runs the goose
// migrations and returns a ready PostgresDB.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil, fmt.Errorf("resetting database schema: %w", err)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("applying migrations: %w", err)
	}

	return result, nil
}

// CreateUser inserts a new user and returns its id. A duplicate username
// surfaces as models.ErrConflict, never as a driver error code.
func (db *PostgresDB) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	row := db.database.QueryRowContext(
		ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`,
		username,
		passwordHash,
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, models.ErrConflict
		}
		return 0, err
	}

	return id, nil
}

// GetUserByUsername fetches a user by exact username match.
// An absent user surfaces as models.ErrNotFound.
func (db *PostgresDB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	)

	usr := &models.User{}
	err := row.Scan(&usr.ID, &usr.Username, &usr.PasswordHash, &usr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return usr, nil
}

// CreatePost inserts a new post owned by userID and returns its id.
func (db *PostgresDB) CreatePost(ctx context.Context, userID int64, title, content string) (int64, error) {
	row := db.database.QueryRowContext(
		ctx,
		`INSERT INTO posts (title, content, user_id) VALUES ($1, $2, $3) RETURNING id`,
		title,
		content,
		userID,
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, err
	}

	return id, nil
}

// GetPost fetches a post by id; absent rows surface as models.ErrNotFound.
func (db *PostgresDB) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, title, content, user_id, created_at, updated_at FROM posts WHERE id = $1`,
		id,
	)

	post := &models.Post{}
	err := row.Scan(&post.ID, &post.Title, &post.Content, &post.UserID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	return post, nil
}

// UpdatePost overwrites title and content of the given post.
func (db *PostgresDB) UpdatePost(ctx context.Context, id int64, title, content string) error {
	result, err := db.database.ExecContext(
		ctx,
		`UPDATE posts SET title = $1, content = $2, updated_at = now() WHERE id = $3`,
		title,
		content,
		id,
	)
	if err != nil {
		return err
	}

	return requireRowAffected(result)
}

// DeletePost removes the given post.
func (db *PostgresDB) DeletePost(ctx context.Context, id int64) error {
	result, err := db.database.ExecContext(
		ctx,
		`DELETE FROM posts WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}

	return requireRowAffected(result)
}

// ListPostsWithAuthors returns every post joined with its author's
// username, newest first.
func (db *PostgresDB) ListPostsWithAuthors(ctx context.Context) ([]models.PostWithAuthor, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`
			SELECT posts.id, posts.title, posts.content, posts.user_id,
					posts.created_at, posts.updated_at, users.username
				FROM posts
					JOIN users ON users.id = posts.user_id
				ORDER BY posts.id DESC
		`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []models.PostWithAuthor{}
	for rows.Next() {
		var item models.PostWithAuthor
		err = rows.Scan(
			&item.ID,
			&item.Title,
			&item.Content,
			&item.UserID,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.AuthorName,
		)
		if err != nil {
			return nil, err
		}

		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Ping verifies connectivity with the database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection pool.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf("dropping public schema tables: %w", err)
	}

	return nil
}
