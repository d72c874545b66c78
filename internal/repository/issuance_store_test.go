package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// recDriver is a minimal database/sql driver that records transaction
// outcomes. Only Begin/Commit/Rollback are implemented: the tests below
// exercise WithTx's lifecycle handling, never a query.
type recDriver struct {
	tx *recTx
}

func (d *recDriver) Open(string) (driver.Conn, error) { return &recConn{d: d}, nil }

func (d *recDriver) Connect(context.Context) (driver.Conn, error) { return &recConn{d: d}, nil }

func (d *recDriver) Driver() driver.Driver { return d }

type recConn struct {
	d *recDriver
}

func (c *recConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not implemented") }
func (c *recConn) Close() error                        { return nil }

func (c *recConn) Begin() (driver.Tx, error) {
	tx := &recTx{}
	c.d.tx = tx
	return tx, nil
}

type recTx struct {
	committed  bool
	rolledBack bool
}

func (t *recTx) Commit() error   { t.committed = true; return nil }
func (t *recTx) Rollback() error { t.rolledBack = true; return nil }

func newRecStore() (*IssuanceStore, *recDriver) {
	d := &recDriver{}
	db := sql.OpenDB(d)
	return NewIssuanceStore(db, NewEventRepo(db), NewTicketRepo(db)), d
}

func TestIssuanceStoreWithTx(t *testing.T) {
	t.Run("commits when fn returns nil", func(t *testing.T) {
		store, d := newRecStore()
		err := store.WithTx(context.Background(), func(ctx context.Context) error {
			require.NotNil(t, txFromContext(ctx))
			return nil
		})
		require.NoError(t, err)
		require.True(t, d.tx.committed)
		require.False(t, d.tx.rolledBack)
	})

	t.Run("rolls back when fn returns an error", func(t *testing.T) {
		store, d := newRecStore()
		boom := errors.New("boom")
		err := store.WithTx(context.Background(), func(ctx context.Context) error {
			return boom
		})
		require.ErrorIs(t, err, boom)
		require.True(t, d.tx.rolledBack)
		require.False(t, d.tx.committed)
	})

	t.Run("rolls back when fn panics", func(t *testing.T) {
		store, d := newRecStore()
		func() {
			defer func() {
				require.NotNil(t, recover(), "panic must propagate to the caller")
			}()
			_ = store.WithTx(context.Background(), func(ctx context.Context) error {
				panic("mid-transaction failure")
			})
		}()
		require.True(t, d.tx.rolledBack, "an abandoned transaction would hold the event row lock")
		require.False(t, d.tx.committed)
	})

	t.Run("nested call reuses the outer transaction", func(t *testing.T) {
		store, d := newRecStore()
		err := store.WithTx(context.Background(), func(outer context.Context) error {
			return store.WithTx(outer, func(inner context.Context) error {
				require.Equal(t, txFromContext(outer), txFromContext(inner))
				return nil
			})
		})
		require.NoError(t, err)
		require.True(t, d.tx.committed)
	})
}
