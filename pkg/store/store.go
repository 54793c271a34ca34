// Package store keeps records of decomposition runs.
//
// The HTTP server saves one [Run] per request and serves it back by ID.
// [MemoryStore] keeps runs in process; [MongoStore] persists them in a
// MongoDB collection.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/htdecomp/pkg/errors"
	"github.com/matzehuels/htdecomp/pkg/graph"
)

// Status is the outcome of a run.
type Status string

const (
	// StatusDecomposed: a decomposition within the width bound was found.
	StatusDecomposed Status = "decomposed"
	// StatusNoDecomposition: the search finished without a decomposition.
	StatusNoDecomposition Status = "no_decomposition"
	// StatusFailed: the run stopped with an error.
	StatusFailed Status = "failed"
)

// Params are the decomposition options a run was started with.
type Params struct {
	Algorithm      string  `json:"algorithm" bson:"algorithm"`
	Width          int     `json:"width" bson:"width"`
	Seed           uint64  `json:"seed" bson:"seed"`
	MaxRecursion   int     `json:"max_recursion,omitempty" bson:"max_recursion,omitempty"`
	BIP            bool    `json:"bip,omitempty" bson:"bip,omitempty"`
	MinImprovement float64 `json:"min_improvement,omitempty" bson:"min_improvement,omitempty"`
	Strict         bool    `json:"strict,omitempty" bson:"strict,omitempty"`
	Shrink         bool    `json:"shrink,omitempty" bson:"shrink,omitempty"`
	Reduce         bool    `json:"reduce,omitempty" bson:"reduce,omitempty"`
}

// Run is the record of one decomposition.
type Run struct {
	ID         string           `json:"id" bson:"_id"`
	CreatedAt  time.Time        `json:"created_at" bson:"created_at"`
	Params     Params           `json:"params" bson:"params"`
	Status     Status           `json:"status" bson:"status"`
	Width      int              `json:"width,omitempty" bson:"width,omitempty"`
	Hypergraph graph.Hypergraph `json:"hypergraph" bson:"hypergraph"`
	Tree       *graph.Tree      `json:"tree,omitempty" bson:"tree,omitempty"`
	Report     *graph.Report    `json:"report,omitempty" bson:"report,omitempty"`
	Error      string           `json:"error,omitempty" bson:"error,omitempty"`
	DurationMS int64            `json:"duration_ms" bson:"duration_ms"`
}

// Store persists runs.
type Store interface {
	// Save inserts or replaces r. An empty ID is replaced by a fresh one
	// and a zero CreatedAt by the current time.
	Save(ctx context.Context, r *Run) error
	// Get returns the run with the given ID or an ErrCodeRunNotFound error.
	Get(ctx context.Context, id string) (*Run, error)
	// List returns at most limit runs, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]*Run, error)
	// Delete removes the run or returns an ErrCodeRunNotFound error.
	Delete(ctx context.Context, id string) error
	Close(ctx context.Context) error
}

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// New opens the named backend. uri and database are only used by mongo.
func New(ctx context.Context, backend, uri, database string) (Store, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemoryStore(), nil
	case BackendMongo:
		return NewMongoStore(ctx, uri, database)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q (must be memory or mongo)", backend)
}

// prepare fills in the ID and creation time of a new run.
func prepare(r *Run) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
}

// checkID rejects IDs that are not UUIDs as unknown runs.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return notFound(id)
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeRunNotFound, "run %q not found", id)
}
