package accounts

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/purplesanya/tg-bot/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func user(id domain.UserId, name string) domain.User {
	return domain.User{Id: id, FirstName: name}
}

func TestData_Upsert(t *testing.T) {
	t.Run("appends and activates", func(t *testing.T) {
		d := Data{}.Upsert(user(1, "A")).Upsert(user(2, "B"))

		require.Len(t, d.Accounts, 2)
		require.NotNil(t, d.ActiveAccountId)
		assert.Equal(t, domain.UserId(2), *d.ActiveAccountId)
	})

	t.Run("replaces in place", func(t *testing.T) {
		d := Data{}.Upsert(user(1, "A")).Upsert(user(2, "B")).Upsert(user(1, "A2"))

		require.Len(t, d.Accounts, 2)
		assert.Equal(t, "A2", d.Accounts[0].FirstName)
		assert.True(t, d.IsActive(1))
	})

	t.Run("does not modify receiver", func(t *testing.T) {
		before := Data{}.Upsert(user(1, "A"))
		_ = before.Upsert(user(2, "B"))

		assert.Len(t, before.Accounts, 1)
		assert.True(t, before.IsActive(1))
	})
}

func TestData_Remove(t *testing.T) {
	t.Run("active falls back to first remaining", func(t *testing.T) {
		d := Data{}.Upsert(user(1, "A")).Upsert(user(2, "B")).Upsert(user(3, "C"))
		d, _ = d.Activate(2)

		d = d.Remove(2)

		require.NotNil(t, d.ActiveAccountId)
		assert.Equal(t, domain.UserId(1), *d.ActiveAccountId)
	})

	t.Run("removing inactive keeps active", func(t *testing.T) {
		d := Data{}.Upsert(user(1, "A")).Upsert(user(2, "B"))

		d = d.Remove(1)

		assert.True(t, d.IsActive(2))
	})

	t.Run("removing last leaves nil", func(t *testing.T) {
		d := Data{}.Upsert(user(1, "A")).Remove(1)

		assert.Nil(t, d.ActiveAccountId)
		assert.True(t, d.Empty())
	})

	t.Run("unknown id is harmless", func(t *testing.T) {
		d := Data{}.Upsert(user(1, "A")).Remove(9)

		assert.True(t, d.IsActive(1))
		assert.Len(t, d.Accounts, 1)
	})
}

// For any non-empty list, removing the active account leaves the active id at
// some remaining account, and removing the last account leaves it nil.
func TestData_RemoveActiveInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 200; iter++ {
		n := rng.Intn(6) + 1
		d := Data{}
		for i := 0; i < n; i++ {
			d = d.Upsert(user(domain.UserId(i+1), "u"))
		}
		d, _ = d.Activate(domain.UserId(rng.Intn(n) + 1))

		for !d.Empty() {
			active, ok := d.Active()
			require.True(t, ok)
			d = d.Remove(active.Id)
			if d.Empty() {
				assert.Nil(t, d.ActiveAccountId)
				break
			}
			_, ok = d.Active()
			assert.True(t, ok, "active id must match a stored account")
		}
	}
}

func TestData_Activate(t *testing.T) {
	d := Data{}.Upsert(user(1, "A")).Upsert(user(2, "B"))

	next, ok := d.Activate(1)
	assert.True(t, ok)
	assert.True(t, next.IsActive(1))

	same, ok := d.Activate(42)
	assert.False(t, ok)
	assert.True(t, same.IsActive(2))
}

func TestData_Normalize(t *testing.T) {
	stale := domain.UserId(9)
	d := Data{ActiveAccountId: &stale, Accounts: []domain.User{user(1, "A")}}.normalize()
	assert.True(t, d.IsActive(1))

	empty := Data{}.normalize()
	assert.NotNil(t, empty.Accounts)
	assert.Nil(t, empty.ActiveAccountId)
}

func TestStore_RemoveActive(t *testing.T) {
	mem := NewMemoryStore(State{})
	store := New(mem)
	_, err := store.AddOrUpdate(user(1, "A"))
	require.NoError(t, err)
	_, err = store.AddOrUpdate(user(2, "B"))
	require.NoError(t, err)
	_, err = store.SetActive(1)
	require.NoError(t, err)

	removed, remaining, err := store.RemoveActive()
	require.NoError(t, err)
	assert.Equal(t, domain.UserId(1), removed.Id)
	assert.True(t, remaining.IsActive(2))

	removed, remaining, err = store.RemoveActive()
	require.NoError(t, err)
	assert.Equal(t, domain.UserId(2), removed.Id)
	assert.Nil(t, remaining.ActiveAccountId)

	removed, _, err = store.RemoveActive()
	require.NoError(t, err)
	assert.Zero(t, removed.Id)

	persisted, _ := mem.Load()
	assert.Empty(t, persisted.UserAccounts.Accounts)
}

func TestStore_SetActiveUnknown(t *testing.T) {
	store := New(NewMemoryStore(State{}))
	_, err := store.AddOrUpdate(user(1, "A"))
	require.NoError(t, err)

	_, err = store.SetActive(5)
	assert.Error(t, err)
	assert.True(t, store.Snapshot().IsActive(1))
}

func TestStore_SimplifiedLoginPerAccount(t *testing.T) {
	store := New(NewMemoryStore(State{}))

	require.NoError(t, store.RememberSimplifiedLogin(1, "+100"))
	require.NoError(t, store.RememberSimplifiedLogin(2, "+200"))

	prefs := store.Preferences()
	assert.Equal(t, "+100", prefs.SimplifiedLogin[1].Phone)
	assert.Equal(t, "+200", prefs.SimplifiedLogin[2].Phone)
	phone, ok := prefs.EntryPhone()
	assert.True(t, ok)
	assert.Equal(t, "+200", phone)

	require.NoError(t, store.ForgetSimplifiedPhone("+200"))
	prefs = store.Preferences()
	_, ok = prefs.EntryPhone()
	assert.False(t, ok)
	assert.Contains(t, prefs.SimplifiedLogin, domain.UserId(1))

	require.NoError(t, store.ForgetSimplifiedLogin(1))
	assert.Empty(t, store.Preferences().SimplifiedLogin)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "accounts.json")
	fs, err := NewFileStore(path)
	require.NoError(t, err)

	store := New(fs)
	_, err = store.AddOrUpdate(domain.User{Id: 10, FirstName: "Ann", Phone: "+1"})
	require.NoError(t, err)
	require.NoError(t, store.SetLanguage("ru"))

	reopened := New(fs)
	snap := reopened.Snapshot()
	require.Len(t, snap.Accounts, 1)
	assert.True(t, snap.IsActive(10))
	assert.Equal(t, "ru", reopened.Preferences().Language)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStore_CorruptFileLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	fs, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = fs.Load()
	assert.Error(t, err)

	store := New(fs)
	assert.True(t, store.Snapshot().Empty())
}
