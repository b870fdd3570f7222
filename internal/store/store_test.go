package store

import (
	"context"
	"testing"
)

type fakeDB struct {
	configured bool
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) error { return nil }
func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (interface{}, error) {
	return nil, nil
}
func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) interface{} { return nil }
func (f *fakeDB) Health(ctx context.Context) error                                  { return nil }
func (f *fakeDB) IsConfigured() bool                                                { return f.configured }

func TestNewSelectsBackend(t *testing.T) {
	if _, ok := New(&fakeDB{configured: true}).(*PostgresCARStore); !ok {
		t.Error("Expected PostgresCARStore when database is configured")
	}
	if _, ok := New(&fakeDB{configured: false}).(*InMemoryCARStore); !ok {
		t.Error("Expected InMemoryCARStore when database is not configured")
	}
}

func TestNewPatternsSelectsBackend(t *testing.T) {
	if _, ok := NewPatterns(&fakeDB{configured: true}).(*PostgresPatternStore); !ok {
		t.Error("Expected PostgresPatternStore when database is configured")
	}
	if _, ok := NewPatterns(&fakeDB{configured: false}).(*InMemoryPatternStore); !ok {
		t.Error("Expected InMemoryPatternStore when database is not configured")
	}
}
