package store

import (
	"context"
	"os"
	"testing"

	"pip-api/internal/migrate"
	"pip-api/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingCount(t *testing.T) {
	sq := []float64{0, 0, 3, 0, 3, 3, 0, 3, 1, 1, 2, 1, 2, 2, 1, 2}
	assert.Equal(t, 2, (&Polygon{Vertices: sq, Splits: []uint32{4}}).RingCount())
	assert.Equal(t, 2, (&Polygon{Vertices: sq, Splits: []uint32{4, 8}}).RingCount())
	assert.Equal(t, 2, (&Polygon{Vertices: sq, Splits: []uint32{0, 4, 4}}).RingCount())
	assert.Equal(t, 0, (&Polygon{}).RingCount())
}

// 需要真实 PostgreSQL：设置 PIP_TEST_PG_DSN 后运行
func TestPolygonCRUD(t *testing.T) {
	dsn := os.Getenv("PIP_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("PIP_TEST_PG_DSN not set")
	}
	db, err := utils.OpenPostgres(dsn)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, migrate.EnsureSchema(db))
	st := AttachDB(db)
	ctx := context.Background()
	name := "store_test_square"
	defer func() { _ = st.DeletePolygon(ctx, name) }()

	in := &Polygon{Name: name, Vertices: []float64{0, 0, 3, 0, 3, 3, 0, 3, 1, 1, 2, 1, 2, 2, 1, 2}, Splits: []uint32{4}}
	require.NoError(t, st.SavePolygon(ctx, in))
	out, err := st.LoadPolygon(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, in.Vertices, out.Vertices)
	assert.Equal(t, in.Splits, out.Splits)
	assert.False(t, out.UpdatedAt.IsZero())

	items, err := st.ListPolygons(ctx, 1000)
	require.NoError(t, err)
	found := false
	for _, it := range items {
		if it.Name == name {
			found = true
			assert.Equal(t, 8, it.VertexCount)
			assert.Equal(t, 2, it.RingCount)
		}
	}
	assert.True(t, found)

	require.NoError(t, st.DeletePolygon(ctx, name))
	_, err = st.LoadPolygon(ctx, name)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.DeletePolygon(ctx, name), ErrNotFound)
}
