package client

import (
	"context"
)

// Database binds a plan executor to a catalog and schema.
type Database struct {
	catalog  string
	schema   string
	executor PlanExecutor
}

func NewDatabase(catalog, schema string, executor PlanExecutor) *Database {
	return &Database{
		catalog:  catalog,
		schema:   schema,
		executor: executor,
	}
}

func (db *Database) Catalog() string {
	return db.catalog
}

func (db *Database) Schema() string {
	return db.schema
}

// LogicalPlan executes a serialized logical plan.
func (db *Database) LogicalPlan(ctx context.Context, plan []byte) (*Output, error) {
	return db.executor.ExecutePlan(ctx, db.catalog, db.schema, plan)
}
