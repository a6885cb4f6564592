package storage

import (
	"errors"
	"io/fs"
	"os"
)

// sqliteSidecars are the files SQLite keeps next to a database in WAL mode.
var sqliteSidecars = []string{"", "-wal", "-shm"}

// SQLiteFootprint returns the bytes on disk held by the given SQLite databases, counting each
// database file together with its -wal and -shm files. Empty paths and files that do not
// exist yet count as zero.
func SQLiteFootprint(dbPaths ...string) (int64, error) {
	var total int64
	for _, db := range dbPaths {
		if db == "" {
			continue
		}
		for _, suffix := range sqliteSidecars {
			info, err := os.Stat(db + suffix)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return 0, err
			}
			if info.IsDir() {
				return 0, &fs.PathError{Op: "footprint", Path: db + suffix, Err: errors.New("is a directory")}
			}
			total += info.Size()
		}
	}
	return total, nil
}
