package rowkit_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mesh-intelligence/rowkit/pkg/rowkit"
	"github.com/mesh-intelligence/rowkit/pkg/schema"
	"github.com/mesh-intelligence/rowkit/pkg/types"
)

func TestOpenLifecycle(t *testing.T) {
	ctx := context.Background()
	people := schema.MustDefine("Person",
		schema.String("name", 50, schema.Required()),
		schema.Integer("age", schema.NonNegative()),
	)

	m, err := rowkit.Open(ctx, types.Config{
		Driver:   types.DriverSQLite,
		Database: filepath.Join(t.TempDir(), "people.db"),
	}, people, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer m.Close()

	require.NoError(t, m.Create(ctx, false))

	ada, err := m.Insert(ctx, rowkit.Values{"name": "Ada", "age": 30})
	require.NoError(t, err)
	id, ok := ada.ID()
	require.True(t, ok)
	assert.Equal(t, int64(1), id)

	got, found, err := m.Get(ctx, rowkit.Where("name", "Ada"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, ada.Values(), got.Values())

	_, err = m.Insert(ctx, rowkit.Values{"name": "Bea", "age": -1})
	assert.ErrorIs(t, err, types.ErrValidation)

	rows, err := rowkit.Collect(m.All(ctx))
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, m.Drop(ctx, false))
}

func TestOpenRejectsBadConfig(t *testing.T) {
	people := schema.MustDefine("Person", schema.Text("name"))
	_, err := rowkit.Open(context.Background(), types.Config{Driver: "oracle"}, people, nil)
	assert.ErrorIs(t, err, types.ErrDriverUnknown)
}

func TestSharedDatabase(t *testing.T) {
	ctx := context.Background()
	cfg := types.Config{Driver: types.DriverSQLite, Database: filepath.Join(t.TempDir(), "shared.db")}

	open := func(s *schema.Schema) *rowkit.Model {
		sess, err := rowkit.Connect(ctx, cfg, nil)
		require.NoError(t, err)
		m := rowkit.NewModel(s, sess)
		t.Cleanup(func() { m.Close() })
		return m
	}

	authors := open(schema.MustDefine("BookAuthor", schema.String("name", 80, schema.Required())))
	books := open(schema.MustDefine("Book",
		schema.String("title", 120, schema.Required()),
		schema.Integer("author_id", schema.NonNegative()),
	))
	require.NoError(t, authors.Create(ctx, false))
	require.NoError(t, books.Create(ctx, false))

	a, err := authors.Insert(ctx, rowkit.Values{"name": "Le Guin"})
	require.NoError(t, err)
	aid, _ := a.ID()
	_, err = books.Insert(ctx, rowkit.Values{"title": "The Dispossessed", "author_id": aid})
	require.NoError(t, err)

	rows, err := rowkit.Collect(books.All(ctx, rowkit.Where("author_id", aid)))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	title, _ := rows[0].Get("title")
	assert.Equal(t, "The Dispossessed", title)
}
