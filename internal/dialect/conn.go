package dialect

import (
	"context"
	"database/sql"
	"fmt"
)

// conn is the shared "hold a database handle, track connected/validated"
// plumbing every engine embeds. Modeled on the teacher's connector.go
// lifecycle (Connect/Disconnect/Ping idempotent, Validate marking a
// distinct state before query/execute are allowed).
type conn struct {
	driverName    string
	dsn           string
	validateQuery string

	db        *sql.DB
	connected bool
	validated bool
}

func (c *conn) Connect(ctx context.Context) error {
	if c.connected {
		return nil
	}
	db, err := sql.Open(c.driverName, c.dsn)
	if err != nil {
		return fmt.Errorf("dialect: connect: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("dialect: connect: %w", err)
	}
	c.db = db
	c.connected = true
	return nil
}

func (c *conn) Validate(ctx context.Context) error {
	if !c.connected {
		return fmt.Errorf("dialect: not connected")
	}
	row := c.db.QueryRowContext(ctx, c.validateQuery)
	var count int
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("dialect: validate: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("dialect: validate: catalog query returned zero columns")
	}
	c.validated = true
	return nil
}

func (c *conn) Disconnect() error {
	if !c.connected {
		return nil
	}
	err := c.db.Close()
	c.connected = false
	c.validated = false
	return err
}

func (c *conn) Connected() bool { return c.connected }
func (c *conn) Validated() bool { return c.validated }

func (c *conn) Query(ctx context.Context, query string) (*sql.Rows, error) {
	if !c.validated {
		return nil, fmt.Errorf("dialect: not validated")
	}
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dialect: query: %w", err)
	}
	return rows, nil
}

func (c *conn) Execute(ctx context.Context, query string) (sql.Result, error) {
	if !c.validated {
		return nil, fmt.Errorf("dialect: not validated")
	}
	res, err := c.db.ExecContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dialect: execute: %w", err)
	}
	return res, nil
}
