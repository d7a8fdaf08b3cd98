// Package jsondb persists each collection as one whole JSON document on disk.
//
// The contract is deliberately fail-open: a missing file reads as the caller's
// default, a corrupt file is copied aside to the backup directory and then
// reads as the default, and a failed write leaves the previous live file
// untouched. Overwritten documents are also backed up first; backups are
// retained indefinitely (known operational gap — there is no pruning policy).
//
// Locking is process-local only. Two processes writing the same collection
// race, and the last writer wins: each write is a full-document replace, not
// an append.
package jsondb

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/certquiz/core"
)

const backupStampLayout = "20060102150405"

var nowFunc = time.Now // mockable

type DB struct {
	dir       string
	backupDir string
	log       core.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-collection
}

// Open prepares the data directory layout and returns a handle shared by all
// repositories.
func Open(dir string, log core.Logger) (*DB, error) {
	db := &DB{
		dir:       dir,
		backupDir: filepath.Join(dir, "backups"),
		log:       log,
		locks:     make(map[string]*sync.Mutex),
	}
	for _, d := range []string{dir, db.backupDir, filepath.Join(dir, userSettingsDir)} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, errors.Wrapf(err, "creating %s", d)
		}
	}
	return db, nil
}

func (db *DB) path(name string) string {
	return filepath.Join(db.dir, filepath.FromSlash(name)+".json")
}

func (db *DB) lock(name string) *sync.Mutex {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := db.locks[name]
	if !ok {
		l = new(sync.Mutex)
		db.locks[name] = l
	}
	return l
}

// Read unmarshals the collection into v. A missing file leaves v untouched
// (the caller's pre-filled value serves as the default). An unparsable file
// is copied to the backup directory and then also treated as absent; Read
// never surfaces an error to the caller.
func (db *DB) Read(name string, v interface{}) {
	l := db.lock(name)
	l.Lock()
	defer l.Unlock()

	path := db.path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			db.log.Warn("jsondb: reading "+path, err)
		}
		return
	}
	if err := json.Unmarshal(data, v); err != nil {
		db.log.Warn("jsondb: corrupt document "+path, err)
		if berr := db.backup(path); berr != nil {
			db.log.Error("jsondb: backing up corrupt "+path, berr)
		}
	}
}

// Exists reports whether the collection has a live file.
func (db *DB) Exists(name string) bool {
	_, err := os.Stat(db.path(name))
	return err == nil
}

// Write atomically replaces the collection with v: the document is first
// serialized to a uniquely named temp file, any prior live file is copied to
// the backup directory, then the temp file is renamed into place. On failure
// the previous live file remains visible to readers.
func (db *DB) Write(name string, v interface{}) error {
	l := db.lock(name)
	l.Lock()
	defer l.Unlock()

	path := db.path(name)
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "marshaling %s", name)
	}

	tmp := path + ".tmp." + uuid.New().String()
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", tmp)
	}

	if _, err := os.Stat(path); err == nil {
		if err := db.backup(path); err != nil {
			_ = os.Remove(tmp)
			return err
		}
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "replacing %s", path)
	}
	return nil
}

// backup copies the live file to backups/<base>.bak.<stamp>.
func (db *DB) backup(path string) error {
	dst := filepath.Join(db.backupDir, filepath.Base(path)+".bak."+nowFunc().Format(backupStampLayout))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", filepath.Dir(dst))
	}

	src, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "creating %s", dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return errors.Wrapf(err, "copying %s to %s", path, dst)
	}
	return nil
}
