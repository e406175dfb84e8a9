package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architect/learning-playground/internal/common/database"
)

func newTestRepo(t *testing.T) *KVRepository {
	t.Helper()

	db, err := database.ConnectInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	kv, err := NewKVRepository(db)
	require.NoError(t, err)
	return kv
}

func TestKVRepository_MissingKeyIsNotAnError(t *testing.T) {
	kv := newTestRepo(t)

	value, found, err := kv.Get(KeyProfile)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)
}

func TestKVRepository_PutGetRoundTrip(t *testing.T) {
	kv := newTestRepo(t)

	require.NoError(t, kv.Put(KeySettings, []byte(`{"theme":"dark"}`)))

	value, found, err := kv.Get(KeySettings)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"theme":"dark"}`, string(value))
}

func TestKVRepository_PutOverwrites(t *testing.T) {
	kv := newTestRepo(t)

	require.NoError(t, kv.Put(KeySettings, []byte(`{"v":1}`)))
	require.NoError(t, kv.Put(KeySettings, []byte(`{"v":2}`)))

	value, _, err := kv.Get(KeySettings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(value))
}

func TestKVRepository_DeleteIgnoresMissing(t *testing.T) {
	kv := newTestRepo(t)

	require.NoError(t, kv.Put(KeyProfile, []byte(`{}`)))
	require.NoError(t, kv.Delete(KeyProfile, KeyProgress))

	_, found, err := kv.Get(KeyProfile)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKVRepository_NamespacesAreIndependent(t *testing.T) {
	kv := newTestRepo(t)

	require.NoError(t, kv.Put(KeyProfile, []byte(`"profile"`)))
	require.NoError(t, kv.Put(KeyDifficulty, []byte(`"difficulty"`)))
	require.NoError(t, kv.Delete(KeyProfile))

	_, found, err := kv.Get(KeyDifficulty)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestKVRepository_TransactionRollsBackOnError(t *testing.T) {
	kv := newTestRepo(t)
	require.NoError(t, kv.Put(KeyProfile, []byte(`{"v":1}`)))

	err := kv.Transaction(func(tx *KVRepository) error {
		if err := tx.Put(KeyProfile, []byte(`{"v":2}`)); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	require.Error(t, err)

	value, _, err := kv.Get(KeyProfile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(value))
}

func TestKVRepository_TransactionCommits(t *testing.T) {
	kv := newTestRepo(t)

	err := kv.Transaction(func(tx *KVRepository) error {
		if err := tx.Put(KeyProfile, []byte(`{}`)); err != nil {
			return err
		}
		return tx.Put(KeyProgress, []byte(`{}`))
	})
	require.NoError(t, err)

	_, found, err := kv.Get(KeyProgress)
	require.NoError(t, err)
	assert.True(t, found)
}
