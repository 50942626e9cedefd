package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"tunemart/config"
)

// Connect opens a MySQL connection pool and verifies it with a ping.
func Connect(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	conn.SetMaxIdleConns(10)
	conn.SetMaxOpenConns(100)
	conn.SetConnMaxLifetime(time.Hour)

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// InitSchema creates the marketplace tables if they don't exist.
func InitSchema(conn *sql.DB) error {
	if err := createUsersTable(conn); err != nil {
		return err
	}
	if err := createMusicTable(conn); err != nil {
		return err
	}
	if err := createReviewsTable(conn); err != nil {
		return err
	}
	return nil
}

func createUsersTable(conn *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`
	if _, err := conn.Exec(query); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	return nil
}

func createMusicTable(conn *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS music (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description VARCHAR(1000),
		price DECIMAL(10,2) NOT NULL,
		category VARCHAR(100) NOT NULL,
		artist_username VARCHAR(100) NOT NULL,
		album_name VARCHAR(255),
		genre VARCHAR(100),
		release_year INT,
		image_url VARCHAR(767),
		audio_file_path VARCHAR(767),
		original_file_name VARCHAR(255),
		average_rating DECIMAL(3,2) NOT NULL DEFAULT 0,
		total_reviews INT NOT NULL DEFAULT 0,
		is_flagged TINYINT(1) NOT NULL DEFAULT 0,
		flagged_at TIMESTAMP NULL DEFAULT NULL,
		flagged_by_customer_id BIGINT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_music_genre (genre),
		INDEX idx_music_artist (artist_username)
	);
	`
	if _, err := conn.Exec(query); err != nil {
		return fmt.Errorf("failed to create music table: %w", err)
	}
	return nil
}

func createReviewsTable(conn *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS reviews (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		music_id BIGINT NOT NULL,
		customer_username VARCHAR(100) NOT NULL,
		rating INT NOT NULL,
		comment VARCHAR(1000),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_reviews_music_customer (music_id, customer_username),
		INDEX idx_reviews_music (music_id)
	);
	`
	if _, err := conn.Exec(query); err != nil {
		return fmt.Errorf("failed to create reviews table: %w", err)
	}
	return nil
}
