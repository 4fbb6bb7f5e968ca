package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type counter struct {
	ID    uint `gorm:"primaryKey"`
	Label string
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&counter{}))
	return conn
}

func TestDBBindsContext(t *testing.T) {
	conn := openDB(t)
	base := NewBase(conn)

	type marker struct{}
	ctx := context.WithValue(context.Background(), marker{}, "value")
	bound := base.DB(ctx)
	require.NotNil(t, bound.Statement)
	require.Equal(t, ctx, bound.Statement.Context)

	require.Same(t, conn, base.DB(nil))
}

func TestInTxCommitsAndRollsBack(t *testing.T) {
	conn := openDB(t)
	base := NewBase(conn)
	ctx := context.Background()

	require.NoError(t, base.InTx(ctx, func(ctx context.Context) error {
		return base.DB(ctx).Create(&counter{Label: "kept"}).Error
	}))

	boom := errors.New("boom")
	err := base.InTx(ctx, func(ctx context.Context) error {
		if err := base.DB(ctx).Create(&counter{Label: "dropped"}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var labels []string
	require.NoError(t, conn.Model(&counter{}).Order("id").Pluck("label", &labels).Error)
	require.Equal(t, []string{"kept"}, labels)
}

func TestInTxNestedJoinsOuter(t *testing.T) {
	conn := openDB(t)
	base := NewBase(conn)

	err := base.InTx(context.Background(), func(outer context.Context) error {
		outerTx := base.DB(outer)
		return base.InTx(outer, func(inner context.Context) error {
			require.Same(t, outerTx, base.DB(inner))
			return nil
		})
	})
	require.NoError(t, err)
}
