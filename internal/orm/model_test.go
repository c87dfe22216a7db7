package orm

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rowkit/internal/conn"
	"github.com/mesh-intelligence/rowkit/internal/statement"
	"github.com/mesh-intelligence/rowkit/pkg/schema"
	"github.com/mesh-intelligence/rowkit/pkg/types"
)

// userSchema is the entity type used throughout the engine tests.
var userSchema = schema.MustDefine("UserAccount",
	schema.String("name", 50, schema.Required()),
	schema.Integer("age", schema.NonNegative()),
	schema.Float("score", schema.Default(0.0)),
	schema.Bool("active", schema.Default(true)),
	schema.Text("bio"),
)

// recordingSession counts the statements that reach the real session.
type recordingSession struct {
	Session
	ops []statement.Op
}

func (s *recordingSession) Execute(ctx context.Context, stmt statement.Statement) error {
	s.ops = append(s.ops, stmt.Op)
	return s.Session.Execute(ctx, stmt)
}

// setupModel opens a sqlite session in a temp dir and binds userSchema to
// it. The table is not created.
func setupModel(t *testing.T) (*Model, *recordingSession) {
	t.Helper()
	c, err := conn.Open(context.Background(), types.Config{
		Driver:   types.DriverSQLite,
		Database: filepath.Join(t.TempDir(), "orm.db"),
	}, nil)
	require.NoError(t, err)
	rec := &recordingSession{Session: c}
	m := NewModel(userSchema, rec)
	t.Cleanup(func() { m.Close() })
	return m, rec
}

// setupTable is setupModel plus Create.
func setupTable(t *testing.T) (*Model, *recordingSession) {
	t.Helper()
	m, rec := setupModel(t)
	require.NoError(t, m.Create(context.Background(), false))
	rec.ops = nil
	return m, rec
}

func TestCreateAndDrop(t *testing.T) {
	ctx := context.Background()
	m, _ := setupModel(t)

	exists, err := m.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, m.Create(ctx, false))
	exists, err = m.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	t.Run("create on existing table fails", func(t *testing.T) {
		assert.ErrorIs(t, m.Create(ctx, false), types.ErrTableExists)
	})

	t.Run("forced create replaces the table", func(t *testing.T) {
		_, err := m.Insert(ctx, Values{"name": "Ada"})
		require.NoError(t, err)

		require.NoError(t, m.Create(ctx, true))
		rows, err := Collect(m.All(ctx))
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	require.NoError(t, m.Drop(ctx, false))

	t.Run("drop on missing table fails", func(t *testing.T) {
		assert.ErrorIs(t, m.Drop(ctx, false), types.ErrTableNotFound)
	})

	t.Run("silent drop on missing table succeeds", func(t *testing.T) {
		assert.NoError(t, m.Drop(ctx, true))
	})
}

func TestInsertAndGetByID(t *testing.T) {
	ctx := context.Background()
	m, _ := setupTable(t)

	ada, err := m.Insert(ctx, Values{"name": "Ada", "age": 30})
	require.NoError(t, err)
	id, ok := ada.ID()
	require.True(t, ok)
	assert.Equal(t, int64(1), id)

	got, found, err := m.GetByID(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, Values{
		"name":   "Ada",
		"age":    int64(30),
		"score":  0.0,
		"active": true,
		"bio":    nil,
	}, got.Values())
	gotID, _ := got.ID()
	assert.Equal(t, int64(1), gotID)

	_, found, err = m.GetByID(ctx, 99)
	require.NoError(t, err)
	assert.False(t, found, "missing row is not an error")
}

func TestInsertValidationRunsBeforeStatements(t *testing.T) {
	ctx := context.Background()
	m, rec := setupTable(t)

	_, err := m.Insert(ctx, Values{"name": "Bea", "age": -1})
	assert.ErrorIs(t, err, types.ErrValidation)

	_, err = m.Insert(ctx, Values{"name": "Bea", "nickname": "B"})
	assert.ErrorIs(t, err, types.ErrUnknownField)

	assert.Empty(t, rec.ops)
}

func TestSaveRequiresNotNullFields(t *testing.T) {
	ctx := context.Background()
	m, rec := setupTable(t)

	r, err := m.New(Values{"age": 5})
	require.NoError(t, err)

	err = r.Save(ctx)
	assert.ErrorIs(t, err, types.ErrNotNullField)
	var fe *types.FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "name", fe.Field)
	assert.Empty(t, rec.ops, "no statement runs before the not-null check")
	assert.False(t, r.Persisted())
}

func TestSaveOnMissingTable(t *testing.T) {
	m, _ := setupModel(t)
	r, err := m.New(Values{"name": "Ada"})
	require.NoError(t, err)
	assert.ErrorIs(t, r.Save(context.Background()), types.ErrTableNotFound)
	assert.False(t, r.Persisted())
}

func TestSaveUpdatesPersistedRow(t *testing.T) {
	ctx := context.Background()
	m, rec := setupTable(t)

	r, err := m.New(Values{"name": "Ada", "age": 30})
	require.NoError(t, err)
	_, ok := r.ID()
	require.False(t, ok)

	require.NoError(t, r.Save(ctx))
	id, ok := r.ID()
	require.True(t, ok)

	require.NoError(t, r.Set("age", 31))
	require.NoError(t, r.Set("bio", "mathematician"))
	rec.ops = nil
	require.NoError(t, r.Save(ctx))
	assert.Equal(t, []statement.Op{statement.OpExists, statement.OpUpdate}, rec.ops)

	again, _ := r.ID()
	assert.Equal(t, id, again, "update keeps the id")

	got, found, err := m.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	age, _ := got.Get("age")
	bio, _ := got.Get("bio")
	assert.Equal(t, int64(31), age)
	assert.Equal(t, "mathematician", bio)
}

func TestSetKeepsPreviousValueOnFailure(t *testing.T) {
	m, _ := setupModel(t)
	r, err := m.New(Values{"name": "Ada", "age": 30})
	require.NoError(t, err)

	assert.ErrorIs(t, r.Set("age", -5), types.ErrValidation)
	assert.ErrorIs(t, r.Set("age", "old"), types.ErrValidation)
	assert.ErrorIs(t, r.Set("active", 1), types.ErrValidation)
	assert.ErrorIs(t, r.Set("name", string(make([]rune, 51))), types.ErrValidation)
	assert.ErrorIs(t, r.Set("nope", 1), types.ErrUnknownField)

	age, _ := r.Get("age")
	assert.Equal(t, int64(30), age)
	active, _ := r.Get("active")
	assert.Equal(t, true, active)

	require.NoError(t, r.Set("age", nil), "nil is accepted on assignment")
	age, _ = r.Get("age")
	assert.Nil(t, age)
}

func TestInsertMany(t *testing.T) {
	ctx := context.Background()
	m, _ := setupTable(t)

	rows, err := m.InsertMany(ctx, []Values{
		{"name": "Ada", "age": 30},
		{"name": "Bea", "age": 25},
		{"name": "Cy", "age": -3},
		{"name": "Dee", "age": 40},
	})
	assert.ErrorIs(t, err, types.ErrValidation)
	require.Len(t, rows, 2, "rows before the failure are returned")

	all, err := Collect(m.All(ctx))
	require.NoError(t, err)
	require.Len(t, all, 2, "no batch rollback")
	name0, _ := all[0].Get("name")
	name1, _ := all[1].Get("name")
	assert.Equal(t, "Ada", name0)
	assert.Equal(t, "Bea", name1)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	m, _ := setupTable(t)
	_, err := m.InsertMany(ctx, []Values{
		{"name": "Ada", "age": 30},
		{"name": "Bea", "age": 30},
	})
	require.NoError(t, err)

	t.Run("first match", func(t *testing.T) {
		r, found, err := m.Get(ctx, Where("age", 30))
		require.NoError(t, err)
		require.True(t, found)
		name, _ := r.Get("name")
		assert.Equal(t, "Ada", name)
	})

	t.Run("all conditions must match", func(t *testing.T) {
		r, found, err := m.Get(ctx, Where("age", 30), Where("name", "Bea"))
		require.NoError(t, err)
		require.True(t, found)
		id, _ := r.ID()
		assert.Equal(t, int64(2), id)
	})

	t.Run("by id condition", func(t *testing.T) {
		r, found, err := m.Get(ctx, Where("id", 2))
		require.NoError(t, err)
		require.True(t, found)
		name, _ := r.Get("name")
		assert.Equal(t, "Bea", name)
	})

	t.Run("id condition accepts any integer type", func(t *testing.T) {
		for _, id := range []any{uint64(2), int16(2), uint8(2)} {
			r, found, err := m.Get(ctx, Where("id", id))
			require.NoError(t, err)
			require.True(t, found, "%T", id)
			name, _ := r.Get("name")
			assert.Equal(t, "Bea", name)
		}
	})

	t.Run("id condition out of range", func(t *testing.T) {
		_, _, err := m.Get(ctx, Where("id", uint64(math.MaxUint64)))
		assert.ErrorIs(t, err, types.ErrValidation)
	})

	t.Run("no match", func(t *testing.T) {
		_, found, err := m.Get(ctx, Where("name", "Zed"))
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("no conditions is a usage error", func(t *testing.T) {
		_, _, err := m.Get(ctx)
		assert.ErrorIs(t, err, types.ErrMethodUsage)
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		_, _, err := m.Get(ctx, Where("nickname", "A"))
		assert.ErrorIs(t, err, types.ErrUnknownField)
	})

	t.Run("condition value is validated", func(t *testing.T) {
		_, _, err := m.Get(ctx, Where("age", "thirty"))
		assert.ErrorIs(t, err, types.ErrValidation)
	})

	t.Run("null condition", func(t *testing.T) {
		r, found, err := m.Get(ctx, Where("bio", nil), Where("name", "Bea"))
		require.NoError(t, err)
		require.True(t, found)
		name, _ := r.Get("name")
		assert.Equal(t, "Bea", name)
	})
}

func TestAll(t *testing.T) {
	ctx := context.Background()
	m, _ := setupTable(t)
	_, err := m.InsertMany(ctx, []Values{
		{"name": "Ada", "age": 30, "active": false},
		{"name": "Bea", "age": 25},
		{"name": "Cy", "age": 30},
	})
	require.NoError(t, err)

	names := func(rows []*Row) []string {
		var out []string
		for _, r := range rows {
			n, _ := r.Get("name")
			out = append(out, n.(string))
		}
		return out
	}

	t.Run("unfiltered returns every row in order", func(t *testing.T) {
		rows, err := Collect(m.All(ctx))
		require.NoError(t, err)
		assert.Equal(t, []string{"Ada", "Bea", "Cy"}, names(rows))
		for _, r := range rows {
			assert.True(t, r.Persisted())
		}
	})

	t.Run("filtered returns exactly the matching subset", func(t *testing.T) {
		rows, err := Collect(m.All(ctx, Where("age", 30)))
		require.NoError(t, err)
		assert.Equal(t, []string{"Ada", "Cy"}, names(rows))

		rows, err = Collect(m.All(ctx, Where("age", 30), Where("active", true)))
		require.NoError(t, err)
		assert.Equal(t, []string{"Cy"}, names(rows))
	})

	t.Run("lazy until ranged", func(t *testing.T) {
		m2, rec := setupTable(t)
		seq := m2.All(ctx)
		assert.Empty(t, rec.ops)
		_, err := Collect(seq)
		require.NoError(t, err)
		assert.Equal(t, []statement.Op{statement.OpSelectAll}, rec.ops)
	})

	t.Run("not restartable", func(t *testing.T) {
		seq := m.All(ctx)
		_, err := Collect(seq)
		require.NoError(t, err)
		_, err = Collect(seq)
		assert.ErrorIs(t, err, types.ErrCursorConsumed)
	})

	t.Run("early break", func(t *testing.T) {
		count := 0
		for r, err := range m.All(ctx) {
			require.NoError(t, err)
			require.NotNil(t, r)
			count++
			break
		}
		assert.Equal(t, 1, count)
	})

	t.Run("bad condition surfaces as error", func(t *testing.T) {
		_, err := Collect(m.All(ctx, Where("ghost", 1)))
		assert.ErrorIs(t, err, types.ErrUnknownField)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	m, _ := setupTable(t)
	rows, err := m.InsertMany(ctx, []Values{
		{"name": "Ada", "age": 30},
		{"name": "Bea", "age": 25},
		{"name": "Cy", "age": 25},
	})
	require.NoError(t, err)

	t.Run("by own id returns the row to transient", func(t *testing.T) {
		ada := rows[0]
		require.NoError(t, ada.Delete(ctx))
		assert.False(t, ada.Persisted())

		_, found, err := m.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.False(t, found)

		require.NoError(t, ada.Save(ctx), "saving again re-inserts")
		id, ok := ada.ID()
		require.True(t, ok)
		assert.NotEqual(t, int64(1), id)
	})

	t.Run("with conditions deletes matching rows", func(t *testing.T) {
		bea := rows[1]
		require.NoError(t, bea.Delete(ctx, Where("age", 25)))
		assert.True(t, bea.Persisted(), "conditional delete leaves the row's state alone")

		left, err := Collect(m.All(ctx))
		require.NoError(t, err)
		require.Len(t, left, 1)
		name, _ := left[0].Get("name")
		assert.Equal(t, "Ada", name)
	})

	t.Run("transient row without conditions", func(t *testing.T) {
		r, err := m.New(Values{"name": "Eve"})
		require.NoError(t, err)
		assert.ErrorIs(t, r.Delete(ctx), types.ErrMethodUsage)
	})

	t.Run("delete where needs a condition", func(t *testing.T) {
		assert.ErrorIs(t, m.DeleteWhere(ctx), types.ErrMethodUsage)
	})

	t.Run("delete where unknown field", func(t *testing.T) {
		assert.ErrorIs(t, m.DeleteWhere(ctx, Where("ghost", 1)), types.ErrUnknownField)
	})
}

func TestRowFromValues(t *testing.T) {
	m, _ := setupModel(t)

	t.Run("nil row", func(t *testing.T) {
		r, err := m.RowFromValues(nil)
		require.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("positional mapping", func(t *testing.T) {
		r, err := m.RowFromValues([]any{int64(4), "Ada", int64(30), 1.5, int64(1), nil})
		require.NoError(t, err)
		id, ok := r.ID()
		assert.True(t, ok)
		assert.Equal(t, int64(4), id)
		assert.Equal(t, Values{"name": "Ada", "age": int64(30), "score": 1.5, "active": true, "bio": nil}, r.Values())
	})

	t.Run("wrong width", func(t *testing.T) {
		_, err := m.RowFromValues([]any{int64(1), "Ada"})
		assert.ErrorIs(t, err, types.ErrSchemaMismatch)
	})

	t.Run("bad id", func(t *testing.T) {
		_, err := m.RowFromValues([]any{"x", "Ada", nil, nil, nil, nil})
		assert.ErrorIs(t, err, types.ErrSchemaMismatch)
	})
}

// dialectSession reports a dialect and runs nothing.
type dialectSession struct {
	Session
	dialect statement.Dialect
}

func (s dialectSession) Dialect() statement.Dialect { return s.dialect }

func TestRowFromValuesCharPadding(t *testing.T) {
	raw := []any{int64(1), "Ada  ", nil, nil, nil, "x  "}

	t.Run("padding dialect trims char columns only", func(t *testing.T) {
		m := NewModel(userSchema, dialectSession{dialect: statement.Postgres})
		r, err := m.RowFromValues(raw)
		require.NoError(t, err)
		name, _ := r.Get("name")
		bio, _ := r.Get("bio")
		assert.Equal(t, "Ada", name)
		assert.Equal(t, "x  ", bio)
	})

	t.Run("non-padding dialect keeps trailing blanks", func(t *testing.T) {
		m := NewModel(userSchema, dialectSession{dialect: statement.SQLite})
		r, err := m.RowFromValues(raw)
		require.NoError(t, err)
		name, _ := r.Get("name")
		assert.Equal(t, "Ada  ", name)
	})
}

func TestTrailingBlanksRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, _ := setupTable(t)

	r, err := m.Insert(ctx, Values{"name": "Ada  ", "bio": "x  "})
	require.NoError(t, err)
	id, _ := r.ID()

	got, found, err := m.GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, r.Values(), got.Values())
	name, _ := got.Get("name")
	assert.Equal(t, "Ada  ", name)
}

func TestRowString(t *testing.T) {
	m, _ := setupModel(t)
	r, err := m.New(Values{"name": "Ada", "age": 30})
	require.NoError(t, err)
	assert.Equal(t, "id: <transient>\nname: Ada\nage: 30\nscore: 0\nactive: true\nbio: NULL", r.String())
}

func TestClosedSession(t *testing.T) {
	m, _ := setupModel(t)
	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Create(context.Background(), false), types.ErrConnectionClosed)
}
