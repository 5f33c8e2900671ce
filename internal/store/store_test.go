package store

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "schoolbooks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTestStore(t)

	in := testDoc{Name: "term 1 fees", Count: 3}
	require.NoError(t, s.Put("greenhill", CollSettings, "doc1", in))

	var out testDoc
	require.NoError(t, s.Get("greenhill", CollSettings, "doc1", &out))
	assert.Equal(t, in, out)
}

func TestGet_NotFound(t *testing.T) {
	s := openTestStore(t)

	var out testDoc
	err := s.Get("greenhill", CollSettings, "missing", &out)
	assert.ErrorIs(t, err, ErrNotFound)

	// Tenant isolation: same ID under another tenant stays invisible.
	require.NoError(t, s.Put("hillside", CollSettings, "doc1", testDoc{Name: "other"}))
	err = s.Get("greenhill", CollSettings, "doc1", &out)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("greenhill", CollSettings, "doc1", testDoc{Name: "x", Count: 1}))

	err := s.Update("greenhill", CollSettings, "doc1", func(data []byte) (any, error) {
		var d testDoc
		if err := Unmarshal(data, &d); err != nil {
			return nil, err
		}
		d.Count++
		return d, nil
	})
	require.NoError(t, err)

	var out testDoc
	require.NoError(t, s.Get("greenhill", CollSettings, "doc1", &out))
	assert.Equal(t, 2, out.Count)
}

func TestUpdate_MutateErrorAbortsWrite(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put("greenhill", CollSettings, "doc1", testDoc{Count: 1}))

	wantErr := fmt.Errorf("nope")
	err := s.Update("greenhill", CollSettings, "doc1", func([]byte) (any, error) {
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)

	var out testDoc
	require.NoError(t, s.Get("greenhill", CollSettings, "doc1", &out))
	assert.Equal(t, 1, out.Count, "failed mutate must not change the document")
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Put("greenhill", CollIncome, fmt.Sprintf("doc%d", i), testDoc{Count: i}))
	}

	var seen int
	err := s.List("greenhill", CollIncome, func(docID string, data []byte) error {
		seen++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, seen)
}

func TestList_MissingCollection(t *testing.T) {
	s := openTestStore(t)
	err := s.List("greenhill", CollExpenses, func(string, []byte) error {
		t.Fatal("callback must not run for a missing collection")
		return nil
	})
	require.NoError(t, err)
}

func TestWriteBatch_Commit(t *testing.T) {
	s := openTestStore(t)

	b := NewWriteBatch()
	for i := 0; i < 10; i++ {
		require.NoError(t, b.Put("greenhill", CollIncome, fmt.Sprintf("doc%d", i), testDoc{Count: i}))
	}
	require.Equal(t, 10, b.Len())
	require.NoError(t, s.Commit(b))
	assert.Equal(t, 0, b.Len(), "commit resets the batch")

	var out testDoc
	require.NoError(t, s.Get("greenhill", CollIncome, "doc7", &out))
	assert.Equal(t, 7, out.Count)
}

func TestWriteBatch_RejectsOversized(t *testing.T) {
	s := openTestStore(t)

	b := NewWriteBatch()
	for i := 0; i <= MaxBatchOps; i++ {
		require.NoError(t, b.Put("greenhill", CollIncome, fmt.Sprintf("doc%d", i), testDoc{Count: i}))
	}
	err := s.Commit(b)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum")
}

func TestWriteBatch_CommitEmptyIsNoop(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Commit(NewWriteBatch()))
}
