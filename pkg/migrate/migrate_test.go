package migrate

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateDir(embeddedDir))

	versions, err := Versions()
	require.NoError(t, err)
	require.Len(t, versions, 5)
	assert.True(t, sort.SliceIsSorted(versions, func(i, j int) bool { return versions[i] < versions[j] }))
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")

	checks := []string{
		"CONSTRAINT uq_orders_order_number UNIQUE (order_number)",
		"CHECK (total_cents = subtotal_cents + tax_cents + shipping_cost_cents - discount_cents)",
		"CONSTRAINT uq_order_lines_order_line UNIQUE (order_id, line_number)",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS orders",
	}
	for _, sub := range checks {
		assert.Contains(t, content, sub)
	}
}

func TestCatalogMigrationGuardsStock(t *testing.T) {
	content := readMigration(t, "*_create_catalog.sql")
	assert.Contains(t, content, "stock_quantity integer NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0)")
	assert.Contains(t, content, "CONSTRAINT uq_products_sku UNIQUE (sku)")
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.Error(t, ValidateDir(dir), "empty dir")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	assert.ErrorContains(t, ValidateDir(dir), "invalid migration filename")

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_only_up.sql"), []byte("-- +goose Up\n"), 0o644))
	assert.ErrorContains(t, ValidateDir(dir), "missing \"-- +goose Down\"")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Order Notes!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_order_notes.sql"))
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "!!!")
	assert.Error(t, err)
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(embeddedDir, pattern))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestCreateSQLMigrationSortsAfterFutureVersions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "29991231235959_far_future.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	path, err := CreateSQLMigration(dir, "add coupon index")
	require.NoError(t, err)
	assert.Equal(t, "29991231235960_add_coupon_index.sql", filepath.Base(path))
	require.NoError(t, ValidateDir(dir))
}

func TestValidateDirChecksAnnotationOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_flipped.sql"), []byte("-- +goose Down\n-- +goose Up\n"), 0o644))
	assert.ErrorContains(t, ValidateDir(dir), "Down before Up")

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_unbalanced.sql"),
		[]byte("-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n"), 0o644))
	assert.ErrorContains(t, ValidateDir(dir), "StatementBegin")
}
