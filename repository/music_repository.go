package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tunemart/model"
)

// MusicRepository defines the interface for catalog record persistence.
// FindByID returns (nil, nil) when no record exists.
type MusicRepository interface {
	Create(ctx context.Context, m *model.Music) (int64, error)
	FindByID(ctx context.Context, id int64) (*model.Music, error)
	FindAll(ctx context.Context, offset, limit int) ([]*model.Music, int64, error)
	FindByGenre(ctx context.Context, genre string, offset, limit int) ([]*model.Music, int64, error)
	FindByArtist(ctx context.Context, artist string, offset, limit int) ([]*model.Music, int64, error)
	SearchByNameOrArtist(ctx context.Context, query string, offset, limit int) ([]*model.Music, int64, error)
	Update(ctx context.Context, m *model.Music) error
	UpdateRating(ctx context.Context, id int64, average float64, total int) error
	SetFlag(ctx context.Context, id int64, customerID int64, at time.Time) error
	ClearFlag(ctx context.Context, id int64) error
	DeleteWithReviews(ctx context.Context, id int64) error
}

// mysqlMusicRepository implements MusicRepository for MySQL.
type mysqlMusicRepository struct {
	db *sql.DB
}

// NewMySQLMusicRepository creates a new MySQL-backed music repository.
func NewMySQLMusicRepository(db *sql.DB) MusicRepository {
	return &mysqlMusicRepository{db: db}
}

const musicColumns = `id, name, description, price, category, artist_username, album_name, genre,
	release_year, image_url, audio_file_path, original_file_name, average_rating, total_reviews,
	is_flagged, flagged_at, flagged_by_customer_id, created_at, updated_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMusic(s scanner) (*model.Music, error) {
	m := &model.Music{}
	var (
		description, albumName, genre     sql.NullString
		imageURL, audioPath, originalName sql.NullString
		releaseYear, flaggedBy            sql.NullInt64
		flaggedAt                         sql.NullTime
	)
	err := s.Scan(&m.ID, &m.Name, &description, &m.Price, &m.Category, &m.ArtistUsername,
		&albumName, &genre, &releaseYear, &imageURL, &audioPath, &originalName,
		&m.AverageRating, &m.TotalReviews, &m.IsFlagged, &flaggedAt, &flaggedBy,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Description = description.String
	m.AlbumName = albumName.String
	m.Genre = genre.String
	m.ImageURL = imageURL.String
	m.AudioFilePath = audioPath.String
	m.OriginalFileName = originalName.String
	m.ReleaseYear = int(releaseYear.Int64)
	if flaggedAt.Valid {
		t := flaggedAt.Time
		m.FlaggedAt = &t
	}
	if flaggedBy.Valid {
		id := flaggedBy.Int64
		m.FlaggedByCustomerID = &id
	}
	return m, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

// Create inserts a new catalog record and returns its assigned id.
func (r *mysqlMusicRepository) Create(ctx context.Context, m *model.Music) (int64, error) {
	query := `INSERT INTO music (name, description, price, category, artist_username, album_name,
		genre, release_year, image_url, audio_file_path, original_file_name,
		average_rating, total_reviews, is_flagged, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, 0, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		m.Name, nullString(m.Description), m.Price, m.Category, m.ArtistUsername,
		nullString(m.AlbumName), nullString(m.Genre), nullInt(m.ReleaseYear),
		nullString(m.ImageURL), nullString(m.AudioFilePath), nullString(m.OriginalFileName),
		m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert music record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for music record: %w", err)
	}
	return id, nil
}

// FindByID retrieves a catalog record by its ID.
func (r *mysqlMusicRepository) FindByID(ctx context.Context, id int64) (*model.Music, error) {
	query := `SELECT ` + musicColumns + ` FROM music WHERE id = ?`
	m, err := scanMusic(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan music record %d: %w", id, err)
	}
	return m, nil
}

func (r *mysqlMusicRepository) queryPage(ctx context.Context, where string, countArgs, listArgs []interface{}, offset, limit int) ([]*model.Music, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM music` + where
	if err := r.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count music records: %w", err)
	}

	listQuery := `SELECT ` + musicColumns + ` FROM music` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, listQuery, append(listArgs, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query music records: %w", err)
	}
	defer rows.Close()

	records := make([]*model.Music, 0)
	for rows.Next() {
		m, err := scanMusic(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan music record: %w", err)
		}
		records = append(records, m)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error during music rows iteration: %w", err)
	}
	return records, total, nil
}

// FindAll retrieves one page of the whole catalog, newest first.
func (r *mysqlMusicRepository) FindAll(ctx context.Context, offset, limit int) ([]*model.Music, int64, error) {
	return r.queryPage(ctx, "", nil, nil, offset, limit)
}

// FindByGenre retrieves one page of records with the exact genre.
func (r *mysqlMusicRepository) FindByGenre(ctx context.Context, genre string, offset, limit int) ([]*model.Music, int64, error) {
	where := ` WHERE genre = ?`
	return r.queryPage(ctx, where, []interface{}{genre}, []interface{}{genre}, offset, limit)
}

// FindByArtist retrieves one page of the records owned by an artist.
func (r *mysqlMusicRepository) FindByArtist(ctx context.Context, artist string, offset, limit int) ([]*model.Music, int64, error) {
	where := ` WHERE artist_username = ?`
	return r.queryPage(ctx, where, []interface{}{artist}, []interface{}{artist}, offset, limit)
}

// likeEscaper neutralizes LIKE metacharacters so user queries stay pure
// substring matches.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchByNameOrArtist matches the query case-insensitively as a substring
// of either the record name or the artist username.
func (r *mysqlMusicRepository) SearchByNameOrArtist(ctx context.Context, query string, offset, limit int) ([]*model.Music, int64, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	where := ` WHERE LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(artist_username) LIKE ? ESCAPE '\\'`
	args := []interface{}{pattern, pattern}
	return r.queryPage(ctx, where, args, args, offset, limit)
}

// Update persists the mutable metadata fields of a record.
// The artist_username column is deliberately absent from the statement.
func (r *mysqlMusicRepository) Update(ctx context.Context, m *model.Music) error {
	query := `UPDATE music SET name = ?, description = ?, price = ?, category = ?, album_name = ?,
		genre = ?, release_year = ?, image_url = ?, updated_at = ? WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query,
		m.Name, nullString(m.Description), m.Price, m.Category, nullString(m.AlbumName),
		nullString(m.Genre), nullInt(m.ReleaseYear), nullString(m.ImageURL),
		m.UpdatedAt, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update music record %d: %w", m.ID, err)
	}
	return nil
}

// UpdateRating writes the recomputed rating cache for a record.
func (r *mysqlMusicRepository) UpdateRating(ctx context.Context, id int64, average float64, total int) error {
	query := `UPDATE music SET average_rating = ?, total_reviews = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, average, total, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update rating for music record %d: %w", id, err)
	}
	return nil
}

// SetFlag marks a record as flagged. All three moderation columns change
// in one statement so no partial state is observable.
func (r *mysqlMusicRepository) SetFlag(ctx context.Context, id int64, customerID int64, at time.Time) error {
	query := `UPDATE music SET is_flagged = 1, flagged_at = ?, flagged_by_customer_id = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, at, customerID, id); err != nil {
		return fmt.Errorf("failed to flag music record %d: %w", id, err)
	}
	return nil
}

// ClearFlag clears the whole moderation group in one statement.
func (r *mysqlMusicRepository) ClearFlag(ctx context.Context, id int64) error {
	query := `UPDATE music SET is_flagged = 0, flagged_at = NULL, flagged_by_customer_id = NULL WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to unflag music record %d: %w", id, err)
	}
	return nil
}

// DeleteWithReviews removes a record and its reviews in a single
// transaction; any failure rolls the whole removal back.
func (r *mysqlMusicRepository) DeleteWithReviews(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE music_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete reviews for music record %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM music WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete music record %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete of music record %d: %w", id, err)
	}
	return nil
}
