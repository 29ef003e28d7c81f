// Package repository implements MySQL persistence for users, refresh tokens
// and videos.  Sentinel errors let the service layer tell an absent record
// or a uniqueness violation apart from an infrastructure failure.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrEmailExists is returned when registering an email that is taken.
	ErrEmailExists = errors.New("email already exists")

	// ErrVideoNotFound is returned when no video matches the given id and
	// owner.  The two conditions are deliberately not distinguished.
	ErrVideoNotFound = errors.New("video not found")

	// ErrVideoExists is returned when the (user_id, youtube_video_id) unique
	// key rejects an insert.
	ErrVideoExists = errors.New("video already exists")
)

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
