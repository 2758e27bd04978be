package model

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/creditreport/src/database"
	"github.com/username/creditreport/src/models"
)

func newTestStore(t *testing.T) *ReportStore {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return NewReportStore(db)
}

func strPtr(s string) *string { return &s }

func sampleReport() *models.ParsedReport {
	return &models.ParsedReport{
		BasicDetails: models.BasicDetails{
			Name:        "Sagar ugle",
			MobilePhone: strPtr("9819137672"),
			PAN:         strPtr("AOZPB0247S"),
			CreditScore: 719,
		},
		ReportSummary: models.ReportSummary{
			TotalAccounts:    4,
			ActiveAccounts:   3,
			ClosedAccounts:   1,
			CurrentBalance:   245000,
			SecuredBalance:   85000,
			UnsecuredBalance: 160000,
		},
		Accounts: []models.Account{
			{BankName: "icicibank", AccountNumber: strPtr("ICIVB20994"), AccountType: strPtr("10"), CurrentBalance: 80000, AmountOverdue: 4000, Address: "ANANDI VIHAR, DEHU ROAD, PUNE, 411047"},
			{BankName: "hdfc", CurrentBalance: 5000},
		},
	}
}

func TestReportStore_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	uploadedAt := time.Date(2024, 3, 1, 10, 30, 0, 123456789, time.UTC)

	created, err := store.Create(ctx, "Sagar_Ugle1.xml", uploadedAt, sampleReport())
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Report 1", created.DisplayName)
	assert.Equal(t, "Sagar_Ugle1.xml", created.FileName)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, uploadedAt.Equal(got.UploadedAt))
	assert.Equal(t, sampleReport().BasicDetails, got.BasicDetails)
	assert.Equal(t, sampleReport().ReportSummary, got.ReportSummary)
	assert.Equal(t, sampleReport().Accounts, got.Accounts)
	assert.Nil(t, got.Accounts[1].AccountNumber)
	assert.Nil(t, got.Accounts[1].AccountType)
}

func TestReportStore_CreateWithoutOptionalFields(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "empty.xml", time.Now(), &models.ParsedReport{})
	require.NoError(t, err)
	assert.NotNil(t, created.Accounts)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.BasicDetails.MobilePhone)
	assert.Nil(t, got.BasicDetails.PAN)
	assert.NotNil(t, got.Accounts)
	assert.Empty(t, got.Accounts)
}

func TestReportStore_CreateCopiesAccounts(t *testing.T) {
	store := newTestStore(t)
	report := sampleReport()

	created, err := store.Create(context.Background(), "a.xml", time.Now(), report)
	require.NoError(t, err)

	report.Accounts[0].BankName = "changed"
	assert.Equal(t, "icicibank", created.Accounts[0].BankName)
}

func TestReportStore_DisplayNamesAreNotReused(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "a.xml", time.Now(), sampleReport())
	require.NoError(t, err)
	second, err := store.Create(ctx, "b.xml", time.Now(), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "Report 2", second.DisplayName)

	require.NoError(t, store.Delete(ctx, first.ID))

	third, err := store.Create(ctx, "c.xml", time.Now(), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, "Report 3", third.DisplayName)
}

func TestReportStore_ConcurrentCreatesGetDistinctLabels(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const n = 10
	labels := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := store.Create(ctx, "x.xml", time.Now(), sampleReport())
			if assert.NoError(t, err) {
				labels <- r.DisplayName
			}
		}()
	}
	wg.Wait()
	close(labels)

	seen := map[string]bool{}
	for l := range labels {
		assert.False(t, seen[l], "duplicate label %s", l)
		seen[l] = true
	}
	assert.Len(t, seen, n)
}

func TestReportStore_ListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	items, err := store.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	older, err := store.Create(ctx, "older.xml", base, sampleReport())
	require.NoError(t, err)
	newer, err := store.Create(ctx, "newer.xml", base.Add(time.Hour), sampleReport())
	require.NoError(t, err)
	// Same timestamp as newer: the later insert wins.
	latest, err := store.Create(ctx, "latest.xml", base.Add(time.Hour), sampleReport())
	require.NoError(t, err)

	items, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{latest.ID, newer.ID, older.ID}, []string{items[0].ID, items[1].ID, items[2].ID})
	assert.Equal(t, "Report 3", items[0].DisplayName)
}

func TestReportStore_UpdateDisplayName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "a.xml", time.Now(), sampleReport())
	require.NoError(t, err)

	updated, err := store.UpdateDisplayName(ctx, created.ID, "March statement")
	require.NoError(t, err)
	assert.Equal(t, "March statement", updated.DisplayName)
	assert.Len(t, updated.Accounts, 2)

	_, err = store.UpdateDisplayName(ctx, "missing", "x")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestReportStore_DeleteCascadesAccounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, "a.xml", time.Now(), sampleReport())
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, created.ID))

	_, err = store.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrReportNotFound)

	var remaining int
	require.NoError(t, store.db.QueryRow(`SELECT COUNT(*) FROM report_accounts WHERE report_id = ?`, created.ID).Scan(&remaining))
	assert.Zero(t, remaining)

	assert.ErrorIs(t, store.Delete(ctx, created.ID), ErrReportNotFound)
}

func TestReportStore_Count(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := 0; i < 3; i++ {
		_, err := store.Create(ctx, "a.xml", time.Now(), sampleReport())
		require.NoError(t, err)
	}
	n, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDefaultDisplayName(t *testing.T) {
	assert.Equal(t, "Report 7", DefaultDisplayName(7))
}
