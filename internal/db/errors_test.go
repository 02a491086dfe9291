package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsSchemaDrift(t *testing.T) {
	undefined := &pgconn.PgError{Code: "42703", Message: `column "categories" of relation "agent_projects" does not exist`}

	if !IsSchemaDrift(undefined) {
		t.Error("undefined_column not recognized")
	}
	if !IsSchemaDrift(fmt.Errorf("inserting row: %w", undefined)) {
		t.Error("wrapped undefined_column not recognized")
	}

	other := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
	if IsSchemaDrift(other) {
		t.Error("unique_violation misclassified as schema drift")
	}
	if IsSchemaDrift(errors.New("plain error")) {
		t.Error("plain error misclassified as schema drift")
	}
	if IsSchemaDrift(nil) {
		t.Error("nil misclassified as schema drift")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(pgx.ErrNoRows) {
		t.Error("ErrNoRows not recognized")
	}
	if !IsNotFound(fmt.Errorf("lookup: %w", pgx.ErrNoRows)) {
		t.Error("wrapped ErrNoRows not recognized")
	}
	if IsNotFound(errors.New("boom")) {
		t.Error("plain error misclassified as not found")
	}
}
