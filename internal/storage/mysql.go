package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

var mysqlDialect = dialect{
	name: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS complaints (
			token VARCHAR(32) PRIMARY KEY,
			status VARCHAR(255),
			description TEXT,
			location TEXT,
			complaint_type VARCHAR(255),
			complaint_category VARCHAR(255),
			expected_resolved_date VARCHAR(64),
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS tracking_history (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			token VARCHAR(32) NOT NULL,
			action_date VARCHAR(64),
			from_user VARCHAR(255),
			to_user VARCHAR(255),
			status VARCHAR(255),
			remark TEXT,
			UNIQUE KEY uq_token_action (token, action_date),
			FOREIGN KEY (token) REFERENCES complaints(token)
		)`,
	},
	upsert: `INSERT INTO complaints
		(token, status, description, location, complaint_type, complaint_category, expected_resolved_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			description = VALUES(description),
			location = VALUES(location),
			complaint_type = VALUES(complaint_type),
			complaint_category = VALUES(complaint_category),
			expected_resolved_date = VALUES(expected_resolved_date)`,
	insertHistory: `INSERT IGNORE INTO tracking_history
		(token, action_date, from_user, to_user, status, remark)
		VALUES (?, ?, ?, ?, ?, ?)`,
}

func openMySQL(dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql connection: %w", err)
	}
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	return db, nil
}
