package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/push-stake-provider/stakeClient/store"
)

func TestDB_OpenModes(t *testing.T) {
	t.Run("in-memory", func(t *testing.T) {
		db, err := OpenInMemoryDB(true)
		require.NoError(t, err)
		require.NotNil(t, db)

		runSampleInsertSelectTest(t, db)
		assert.NoError(t, db.Close())
	})

	t.Run("file-based DB", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "databases")
		db, err := OpenFileDB(dir, "journal.db", true)
		require.NoError(t, err)
		require.NotNil(t, db)

		assert.FileExists(t, filepath.Join(dir, "journal.db"))
		runSampleInsertSelectTest(t, db)
		assert.NoError(t, db.Close())
	})

	t.Run("reopen keeps rows", func(t *testing.T) {
		dir := t.TempDir()
		db, err := OpenFileDB(dir, "journal.db", true)
		require.NoError(t, err)
		require.NoError(t, db.Journal().RecordBroadcast(&store.StakeTransaction{TxHash: "PERSIST"}))
		require.NoError(t, db.Close())

		db, err = OpenFileDB(dir, "journal.db", false)
		require.NoError(t, err)
		defer db.Close()
		got, err := db.Journal().Get("PERSIST")
		require.NoError(t, err)
		assert.Equal(t, store.StatusPending, got.Status)
	})

	t.Run("file in place of directory fails", func(t *testing.T) {
		dir := t.TempDir()
		db, err := OpenFileDB(dir, "journal.db", true)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		bad, err := OpenFileDB(filepath.Join(dir, "journal.db", "nested"), "x.db", true)
		require.Error(t, err)
		require.Nil(t, bad)
	})
}

func runSampleInsertSelectTest(t *testing.T, db *DB) {
	t.Helper()
	entry := store.StakeTransaction{TxHash: "ABC", Kind: "stake", Amount: "1000", Status: store.StatusPending}
	require.NoError(t, db.Client().Create(&entry).Error)

	var got store.StakeTransaction
	require.NoError(t, db.Client().First(&got, "tx_hash = ?", "ABC").Error)
	assert.Equal(t, "1000", got.Amount)
}
