package database

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all relations used by the service.  Every
// statement is idempotent so EnsureSchema can run at each startup.  Times
// are stored as DATETIME in UTC (the DSN sets loc=UTC).
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name          VARCHAR(150)  NOT NULL,
		email         VARCHAR(255)  NOT NULL,
		password_hash VARCHAR(255)  NOT NULL,
		cpf           VARCHAR(14)   NOT NULL,
		phone         VARCHAR(20)   NOT NULL,
		avatar_url    VARCHAR(500)  NULL,
		created_at    DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email),
		UNIQUE KEY uq_users_cpf (cpf)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)  NOT NULL,
		expires_at DATETIME  NOT NULL,
		revoked_at DATETIME  NULL,
		created_at DATETIME  NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_tokens_hash (token_hash),
		KEY idx_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS rooms (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		owner_id       BIGINT UNSIGNED NOT NULL,
		name           VARCHAR(100)  NOT NULL,
		description    TEXT          NOT NULL,
		capacity       INT UNSIGNED  NOT NULL,
		street         VARCHAR(255)  NOT NULL,
		number         VARCHAR(20)   NOT NULL,
		district       VARCHAR(100)  NOT NULL,
		city           VARCHAR(100)  NOT NULL,
		state          CHAR(2)       NOT NULL,
		postal_code    VARCHAR(10)   NOT NULL,
		price_per_hour DECIMAL(10,2) NOT NULL,
		is_available   TINYINT(1)    NOT NULL DEFAULT 1,
		created_at     DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_rooms_owner (owner_id),
		KEY idx_rooms_city_state (city, state),
		CONSTRAINT fk_rooms_owner FOREIGN KEY (owner_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS reservations (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		requester_id   BIGINT UNSIGNED NOT NULL,
		room_id        BIGINT UNSIGNED NOT NULL,
		starts_at      DATETIME      NOT NULL,
		ends_at        DATETIME      NOT NULL,
		total_price    DECIMAL(10,2) NOT NULL,
		payment_method ENUM('PIX','CREDIT_CARD','DEBIT_CARD','BANK_SLIP','CASH') NOT NULL,
		status         ENUM('REQUESTED','APPROVED','REJECTED','CANCELLED','COMPLETED') NOT NULL DEFAULT 'REQUESTED',
		created_at     DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_reservations_requester (requester_id),
		KEY idx_reservations_room_window (room_id, status, starts_at, ends_at),
		CONSTRAINT fk_reservations_requester FOREIGN KEY (requester_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_reservations_room FOREIGN KEY (room_id) REFERENCES rooms (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates all tables when they do not exist yet.  It is safe
// to call on every startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
