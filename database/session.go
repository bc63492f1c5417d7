// Copyright (C) 2020-2021,  0xN3utr0n

// Ktrace is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Ktrace is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.

// You should have received a copy of the GNU General Public License
// along with Ktrace. If not, see <http://www.gnu.org/licenses/>.

package database

import (
	"strings"
	"time"
)

// CreateSessionTable creates the Session table.
// It holds one row per capture session ever run on this host.
func CreateSessionTable() error {
	create := `CREATE TABLE IF NOT EXISTS
	Session (
		"id" integer PRIMARY KEY AUTOINCREMENT,
		"started" integer NOT NULL,
		"kernel" TEXT,
		"categories" TEXT,
		"explicit" integer NOT NULL,
		"timeout" integer NOT NULL,
		"output" TEXT NOT NULL,
		"outcome" TEXT DEFAULT 'unknown',
		"bytes" integer DEFAULT 0
	  );`

	stmt, err := db.Prepare(create)
	if err != nil {
		return err
	}

	defer stmt.Close()

	if _, err := stmt.Exec(); err != nil {
		return err
	}

	return nil
}

// InsertSession Creates a new entry for a capture that is about to run.
func InsertSession(kernel string, categories []string, explicit bool, timeout uint, output string) (int64, error) {
	insert := `INSERT INTO Session(started, kernel, categories, explicit, timeout, output)
				VALUES (?, ?, ?, ?, ?, ?)`

	stmt, err := db.Prepare(insert)
	if err != nil {
		return 0, err
	}

	defer stmt.Close()

	res, err := stmt.Exec(time.Now().Unix(), kernel, strings.Join(categories, " "),
		explicit, timeout, output)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// FinishSession Records how the given capture ended.
func FinishSession(id int64, outcome string, bytes int) error {
	update := `UPDATE Session SET outcome=?, bytes=? WHERE id=?`

	stmt, err := db.Prepare(update)
	if err != nil {
		return err
	}

	defer stmt.Close()

	_, err = stmt.Exec(outcome, bytes, id)
	if err != nil {
		return err
	}

	return nil
}

// SessionOutcome Gets the recorded outcome for the given capture.
func SessionOutcome(id int64) (string, int, error) {
	query := `SELECT outcome, bytes FROM Session WHERE id=?`

	stmt, err := db.Prepare(query)
	if err != nil {
		return "", 0, err
	}

	defer stmt.Close()

	rows, err := stmt.Query(id)
	if err != nil {
		return "", 0, err
	}

	defer rows.Close()

	var outcome string
	var bytes int
	if rows.Next() {
		rows.Scan(&outcome, &bytes)
	}

	return outcome, bytes, nil
}
