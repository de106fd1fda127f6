// Package journal keeps a local history of contract deployments in a bbolt file.
package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"
)

var deploymentsBucket = []byte("deployments")

// ErrNotFound is returned by Get for unknown ids
var ErrNotFound = errors.New("deployment record not found")

// Record describes one successful deployment
type Record struct {
	ID              string    `json:"id"`
	ContractName    string    `json:"contract_name"`
	Network         string    `json:"network"`
	ChainID         string    `json:"chain_id"`
	ContractAddress string    `json:"contract_address"`
	OwnerAddress    string    `json:"owner_address"`
	TxHash          string    `json:"tx_hash"`
	ConfigPath      string    `json:"config_path"`
	DeployedAt      time.Time `json:"deployed_at"`
}

// Journal is an append-only deployment log
type Journal struct {
	db *bbolt.DB
}

// Open opens or creates the journal at path
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(deploymentsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal bucket: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close releases the journal file
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores rec, assigning an id and timestamp when missing
func (j *Journal) Record(rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.DeployedAt.IsZero() {
		rec.DeployedAt = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("failed to encode record: %w", err)
	}

	err = j.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(deploymentsBucket).Put([]byte(rec.ID), data)
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to store record: %w", err)
	}
	return rec, nil
}

// Get returns the record with the given id
func (j *Journal) Get(id string) (Record, error) {
	var rec Record
	err := j.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(deploymentsBucket).Get([]byte(id))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	return rec, err
}

// List returns all records, newest first
func (j *Journal) List() ([]Record, error) {
	var records []Record
	err := j.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(deploymentsBucket).ForEach(func(_, v []byte) error {
			var rec Record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	sort.SliceStable(records, func(a, b int) bool {
		return records[a].DeployedAt.After(records[b].DeployedAt)
	})
	return records, nil
}
