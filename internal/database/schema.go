package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema lists the DDL applied by Migrate, in dependency order.  The
// booking_seats unique key is what keeps a seat from being sold twice
// for the same show.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS theaters (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(200) NOT NULL,
		city       VARCHAR(120) NULL,
		address    VARCHAR(255) NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_theater_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS movies (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title        VARCHAR(255) NOT NULL,
		language     VARCHAR(64) NULL,
		duration_min INT NULL,
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_movie_title (title)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS halls (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		theater_id BIGINT UNSIGNED NOT NULL,
		name       VARCHAR(120) NOT NULL,
		UNIQUE KEY uq_hall_name_per_theater (theater_id, name),
		CONSTRAINT fk_halls_theater FOREIGN KEY (theater_id) REFERENCES theaters(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS hall_rows (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		hall_id    BIGINT UNSIGNED NOT NULL,
		row_num    INT NOT NULL,
		seat_count INT NOT NULL,
		UNIQUE KEY uq_row_per_hall (hall_id, row_num),
		CONSTRAINT fk_rows_hall FOREIGN KEY (hall_id) REFERENCES halls(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS seats (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		row_id      BIGINT UNSIGNED NOT NULL,
		seat_number INT NOT NULL,
		is_aisle    TINYINT(1) NOT NULL DEFAULT 0,
		UNIQUE KEY uq_seat_per_row (row_id, seat_number),
		CONSTRAINT fk_seats_row FOREIGN KEY (row_id) REFERENCES hall_rows(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS shows (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		movie_id   BIGINT UNSIGNED NOT NULL,
		hall_id    BIGINT UNSIGNED NOT NULL,
		start_time DATETIME NOT NULL,
		price      BIGINT NOT NULL,
		UNIQUE KEY uq_show_slot (hall_id, start_time),
		KEY idx_shows_movie_start (movie_id, start_time),
		CONSTRAINT fk_shows_movie FOREIGN KEY (movie_id) REFERENCES movies(id) ON DELETE CASCADE,
		CONSTRAINT fk_shows_hall FOREIGN KEY (hall_id) REFERENCES halls(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		show_id     BIGINT UNSIGNED NOT NULL,
		group_name  VARCHAR(120) NOT NULL,
		total_price BIGINT NOT NULL,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_bookings_show FOREIGN KEY (show_id) REFERENCES shows(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS booking_seats (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT UNSIGNED NOT NULL,
		show_id    BIGINT UNSIGNED NOT NULL,
		seat_id    BIGINT UNSIGNED NOT NULL,
		UNIQUE KEY uq_seat_once_per_show (show_id, seat_id),
		CONSTRAINT fk_bs_booking FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE CASCADE,
		CONSTRAINT fk_bs_show FOREIGN KEY (show_id) REFERENCES shows(id) ON DELETE CASCADE,
		CONSTRAINT fk_bs_seat FOREIGN KEY (seat_id) REFERENCES seats(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing table.  It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i+1, err)
		}
	}
	return nil
}
