package repo

import (
	"InvKeeper/internal/model"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// хелпер для создания базового item
func mkItem(code, descr, loc string) *model.Item {
	return &model.Item{
		CodiceArticolo: code,
		Descrizione:    descr,
		Locazione:      loc,
		CreatedBy:      "alice",
		ModifiedBy:     "alice",
	}
}

func TestItemRepository_Create_GetByID(t *testing.T) {
	db := newTestDB(t)
	r := NewItemRepository(db)
	ctx := context.Background()

	it := mkItem("A1", "Viti M4", "Shelf A")
	it.Quantita, it.Carico = 10, 10
	require.NoError(t, r.Create(ctx, it))
	assert.NotZero(t, it.ID)

	got, err := r.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "A1", got.CodiceArticolo)
	assert.Equal(t, int64(10), got.Quantita)
	assert.Nil(t, got.Attachment)

	// несуществующий id
	got, err = r.GetByID(ctx, 999)
	assert.Nil(t, got)
	assert.Equal(t, gorm.ErrRecordNotFound, err)
}

func TestItemRepository_GetByID_AttachmentWithoutData(t *testing.T) {
	db := newTestDB(t)
	r := NewItemRepository(db)
	ar := NewAttachmentRepository(db)
	ctx := context.Background()

	_, err := ar.CreateIfAbsent(ctx, mkAttachment("tok"))
	require.NoError(t, err)
	tok := "tok"
	it := mkItem("A2", "", "")
	it.AttachmentToken = &tok
	require.NoError(t, r.Create(ctx, it))

	got, err := r.GetByID(ctx, it.ID)
	require.NoError(t, err)
	if assert.NotNil(t, got.Attachment) {
		assert.Equal(t, "tok", got.Attachment.Token)
		assert.Equal(t, model.AttachmentPDF, got.Attachment.Kind)
		// байты в выборку записей не попадают
		assert.Empty(t, got.Attachment.Data)
	}
}

func TestItemRepository_List_Filters(t *testing.T) {
	db := newTestDB(t)
	r := NewItemRepository(db)
	ctx := context.Background()

	for _, it := range []*model.Item{
		mkItem("A1", "Viti M4", "Shelf A"),
		mkItem("B2", "Dadi", "shelf a - basso"),
		mkItem("C3", "Viti M6", "Shelf B"),
		mkItem("D_4", "100% cotone", "Magazzino"),
	} {
		require.NoError(t, r.Create(ctx, it))
	}

	codes := func(items []model.Item) []string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.CodiceArticolo)
		}
		return out
	}

	all, err := r.List(ctx, ItemFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B2", "C3", "D_4"}, codes(all)) // порядок вставки

	byLoc, err := r.List(ctx, ItemFilter{Locazione: "Shelf A"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "B2"}, codes(byLoc))

	byDescr, err := r.List(ctx, ItemFilter{Descrizione: "viti"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1", "C3"}, codes(byDescr))

	// конъюнкция = пересечение
	both, err := r.List(ctx, ItemFilter{Descrizione: "viti", Locazione: "shelf a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, codes(both))

	// спецсимволы LIKE трактуются буквально
	pct, err := r.List(ctx, ItemFilter{Descrizione: "100%"})
	require.NoError(t, err)
	assert.Equal(t, []string{"D_4"}, codes(pct))
	under, err := r.List(ctx, ItemFilter{CodiceArticolo: "_"})
	require.NoError(t, err)
	assert.Equal(t, []string{"D_4"}, codes(under))

	none, err := r.List(ctx, ItemFilter{CodiceArticolo: "zzz"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestItemRepository_List_AccentedUppercase(t *testing.T) {
	db := newTestDB(t)
	r := NewItemRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, mkItem("CAFFÈ-1", "PERÒ", "SCAFFALE À")))
	require.NoError(t, r.Create(ctx, mkItem("B2", "Dadi", "Scaffale B")))

	for _, f := range []ItemFilter{
		{CodiceArticolo: "CAFFÈ"},
		{CodiceArticolo: "caffè"},
		{CodiceArticolo: "Caffè-1"},
		{Descrizione: "PERÒ"},
		{Descrizione: "però"},
		{Locazione: "SCAFFALE À"},
		{Locazione: "scaffale à"},
	} {
		got, err := r.List(ctx, f)
		require.NoError(t, err)
		if assert.Len(t, got, 1, "filter %+v", f) {
			assert.Equal(t, "CAFFÈ-1", got[0].CodiceArticolo)
		}
	}

	both, err := r.List(ctx, ItemFilter{Locazione: "scaffale"})
	require.NoError(t, err)
	assert.Len(t, both, 2)
}

func TestItemRepository_List_KeepsSurroundingSpaces(t *testing.T) {
	db := newTestDB(t)
	r := NewItemRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, mkItem("BA", "", "")))
	require.NoError(t, r.Create(ctx, mkItem("X", "", "Shelf A")))

	got, err := r.List(ctx, ItemFilter{CodiceArticolo: " A"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.List(ctx, ItemFilter{Locazione: " A"})
	require.NoError(t, err)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "X", got[0].CodiceArticolo)
	}
}

func TestItemRepository_ExistsByCode(t *testing.T) {
	db := newTestDB(t)
	r := NewItemRepository(db)
	ctx := context.Background()

	it := mkItem("A1", "", "")
	require.NoError(t, r.Create(ctx, it))

	ok, err := r.ExistsByCode(ctx, "A1", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.ExistsByCode(ctx, "A1", it.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.ExistsByCode(ctx, "a1", 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestItemRepository_Update_DeltaAndFields(t *testing.T) {
	db := newTestDB(t)
	r := NewItemRepository(db)
	ctx := context.Background()

	it := mkItem("A1", "old", "Shelf A")
	it.Quantita, it.Carico = 10, 10
	require.NoError(t, r.Create(ctx, it))

	got, prev, err := r.Update(ctx, it.ID, ItemUpdate{
		Fields:     map[string]any{"descrizione": "new"},
		Scarico:    3,
		ModifiedBy: "bob",
	})
	require.NoError(t, err)
	assert.Nil(t, prev)
	assert.Equal(t, int64(7), got.Quantita)
	assert.Equal(t, int64(10), got.Carico)
	assert.Equal(t, int64(3), got.Scarico)
	assert.Equal(t, "new", got.Descrizione)
	assert.Equal(t, "Shelf A", got.Locazione)
	assert.Equal(t, "alice", got.CreatedBy)
	assert.Equal(t, "bob", got.ModifiedBy)

	got, _, err = r.Update(ctx, it.ID, ItemUpdate{Carico: 5, Scarico: 1, ModifiedBy: "carol"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.Quantita)

	_, _, err = r.Update(ctx, 999, ItemUpdate{ModifiedBy: "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestItemRepository_Update_Code(t *testing.T) {
	db := newTestDB(t)
	r := NewItemRepository(db)
	ctx := context.Background()

	a := mkItem("A1", "", "")
	require.NoError(t, r.Create(ctx, a))
	b := mkItem("B2", "", "")
	require.NoError(t, r.Create(ctx, b))

	// несуществующая запись проверяется раньше кода
	_, _, err := r.Update(ctx, 999, ItemUpdate{Fields: map[string]any{"codice_articolo": "A1"}, ModifiedBy: "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, _, err = r.Update(ctx, b.ID, ItemUpdate{Fields: map[string]any{"codice_articolo": "A1"}, ModifiedBy: "x"})
	assert.ErrorIs(t, err, ErrCodeTaken)

	// свой же код не считается занятым
	got, _, err := r.Update(ctx, a.ID, ItemUpdate{Fields: map[string]any{"codice_articolo": "A1"}, ModifiedBy: "x"})
	require.NoError(t, err)
	assert.Equal(t, "A1", got.CodiceArticolo)
}

func TestItemRepository_Update_ReplacesAttachment(t *testing.T) {
	db := newTestDB(t)
	r := NewItemRepository(db)
	ar := NewAttachmentRepository(db)
	ctx := context.Background()

	for _, tok := range []string{"old", "new"} {
		_, err := ar.CreateIfAbsent(ctx, mkAttachment(tok))
		require.NoError(t, err)
	}
	old := "old"
	it := mkItem("A1", "", "")
	it.AttachmentToken = &old
	require.NoError(t, r.Create(ctx, it))

	newTok := "new"
	got, prev, err := r.Update(ctx, it.ID, ItemUpdate{AttachmentToken: &newTok, ModifiedBy: "bob"})
	require.NoError(t, err)
	if assert.NotNil(t, prev) {
		assert.Equal(t, "old", *prev)
	}
	if assert.NotNil(t, got.Attachment) {
		assert.Equal(t, "new", got.Attachment.Token)
	}
}

// конкурентные дельты не теряются
func TestItemRepository_Update_ConcurrentDeltas(t *testing.T) {
	db := newTestDB(t)
	r := NewItemRepository(db)
	ctx := context.Background()

	it := mkItem("A1", "", "")
	require.NoError(t, r.Create(ctx, it))

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := r.Update(ctx, it.ID, ItemUpdate{Carico: 2, Scarico: 1, ModifiedBy: "w"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := r.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.Quantita)
	assert.Equal(t, int64(2*n), got.Carico)
}

func TestItemRepository_Delete(t *testing.T) {
	db := newTestDB(t)
	r := NewItemRepository(db)
	ar := NewAttachmentRepository(db)
	ctx := context.Background()

	_, err := ar.CreateIfAbsent(ctx, mkAttachment("tok"))
	require.NoError(t, err)
	tok := "tok"
	it := mkItem("A1", "", "")
	it.AttachmentToken = &tok
	require.NoError(t, r.Create(ctx, it))

	got, err := r.Delete(ctx, it.ID)
	require.NoError(t, err)
	if assert.NotNil(t, got) {
		assert.Equal(t, "tok", *got)
	}

	_, err = r.Delete(ctx, it.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
