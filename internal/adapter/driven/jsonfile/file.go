package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ericfisherdev/appregistry/internal/domain/model"
	"github.com/ericfisherdev/appregistry/internal/domain/port/driven"
)

// load reads and decodes the whole collection. A "null" document decodes to
// an empty collection. Records without an id or with a duplicated id are
// rejected since they could never be addressed.
func (s *AppStore) load() ([]appRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &driven.StorageError{Op: "read", Path: s.path, Err: err}
	}

	var records []appRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &driven.StorageError{Op: "decode", Path: s.path, Err: err}
	}

	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		if rec.AppID == "" {
			return nil, &driven.StorageError{Op: "decode", Path: s.path, Err: fmt.Errorf("record %d has no appId", i)}
		}
		if _, dup := seen[rec.AppID]; dup {
			return nil, &driven.StorageError{Op: "decode", Path: s.path, Err: fmt.Errorf("duplicate appId %q", rec.AppID)}
		}
		seen[rec.AppID] = struct{}{}
	}
	return records, nil
}

// save encodes records in full and atomically replaces the backing file.
// Callers must hold the write lock.
func (s *AppStore) save(records []appRecord) error {
	if records == nil {
		records = []appRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &driven.StorageError{Op: "encode", Path: s.path, Err: err}
	}
	data = append(data, '\n')

	if err := s.writeFile(s.path, bytes.NewReader(data)); err != nil {
		return &driven.StorageError{Op: "write", Path: s.path, Err: err}
	}
	return nil
}

func indexOf(records []appRecord, id string) int {
	for i, rec := range records {
		if rec.AppID == id {
			return i
		}
	}
	return -1
}

func toModel(rec appRecord) model.App {
	return model.App{
		ID:   rec.AppID,
		Type: model.AppType(rec.Type),
		Name: rec.AppName,
		Key:  rec.AppKey,
	}
}

func toRecord(app model.App) appRecord {
	return appRecord{
		AppID:   app.ID,
		Type:    string(app.Type),
		AppName: app.Name,
		AppKey:  app.Key,
	}
}
