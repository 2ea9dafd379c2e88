package ledger

import (
	"context"
	"errors"
	"testing"

	"recon-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T) *Store {
	t.Helper()
	db := newTestDB(t)
	seed(t, db,
		&models.Partner{Code: "C001", Role: models.PartnerCustomer, ShortName: "Acme", FullName: "Acme Trading Ltd"},
		&models.Partner{Code: "S001", Role: models.PartnerSupplier, ShortName: "Bolt", FullName: "Bolt Supplies"},
		&models.Partner{Code: "C002", Role: models.PartnerCustomer, FullName: "Quiet Customer"},

		&models.OutboundRecord{CustomerCode: "C001", ProductCode: "P1", TotalPrice: dec("300"), OutboundDate: "2024-01-10"},
		&models.OutboundRecord{CustomerCode: "C001", ProductCode: "P2", TotalPrice: dec("500"), OutboundDate: "2024-03-05"},
		&models.OutboundRecord{CustomerCode: "C001", ProductCode: "P1", TotalPrice: dec("200"), OutboundDate: "2024-02-20"},
		&models.OutboundRecord{CustomerCode: "C999", ProductCode: "P1", TotalPrice: dec("7777"), OutboundDate: "2024-02-20"},

		&models.ReceivablePayment{CustomerCode: "C001", Amount: dec("150"), PayDate: "2024-01-31", PayMethod: "bank"},
		&models.ReceivablePayment{CustomerCode: "C001", Amount: dec("250"), PayDate: "2024-03-31", PayMethod: "cash"},

		&models.InboundRecord{SupplierCode: "S001", ProductCode: "P9", TotalPrice: dec("125.5"), InboundDate: "2024-04-01"},
		&models.InboundRecord{SupplierCode: "S001", ProductCode: "P9", TotalPrice: dec("374.5"), InboundDate: "2024-04-02"},
	)
	return NewStore(db)
}

func TestListPartnersByRole(t *testing.T) {
	store := fixture(t)
	ctx := context.Background()

	customers, err := store.ListPartners(ctx, models.PartnerCustomer)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "C001", customers[0].Code)
	assert.Equal(t, "C002", customers[1].Code)

	suppliers, err := store.ListPartners(ctx, models.PartnerSupplier)
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	assert.Equal(t, "Bolt Supplies", suppliers[0].FullName)
}

func TestListPartnersRejectsUnknownRole(t *testing.T) {
	store := fixture(t)

	_, err := store.ListPartners(context.Background(), models.PartnerRole(7))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataAccess)
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestFindPartner(t *testing.T) {
	store := fixture(t)
	ctx := context.Background()

	p, err := store.FindPartner(ctx, "S001")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, models.PartnerSupplier, p.Role)

	missing, err := store.FindPartner(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSummarize(t *testing.T) {
	store := fixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		code    string
		role    models.PartnerRole
		total   string
		paid    string
		balance string
	}{
		{"customer with payments", "C001", models.PartnerCustomer, "1000", "400", "600"},
		{"supplier without payments", "S001", models.PartnerSupplier, "500", "0", "500"},
		{"partner without rows", "C002", models.PartnerCustomer, "0", "0", "0"},
		{"code under the other role", "C001", models.PartnerSupplier, "0", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := store.Summarize(ctx, tt.code, tt.role)
			require.NoError(t, err)
			assert.True(t, s.Total.Equal(dec(tt.total)), "total %s", s.Total)
			assert.True(t, s.Paid.Equal(dec(tt.paid)), "paid %s", s.Paid)
			assert.True(t, s.Balance.Equal(dec(tt.balance)), "balance %s", s.Balance)
			assert.True(t, s.Balance.Equal(s.Total.Sub(s.Paid)))
		})
	}
}

func TestSummarizeOverpaidGoesNegative(t *testing.T) {
	db := newTestDB(t)
	seed(t, db,
		&models.OutboundRecord{CustomerCode: "C1", TotalPrice: dec("100.10"), OutboundDate: "2024-01-01"},
		&models.ReceivablePayment{CustomerCode: "C1", Amount: dec("120.30"), PayDate: "2024-01-02"},
	)

	s, err := NewAggregator(db).Summarize(context.Background(), "C1", models.PartnerCustomer)
	require.NoError(t, err)
	assert.Equal(t, "-20.2", s.Balance.String())
}

func TestSummarizeSurfacesDataAccessError(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrator().DropTable(&models.ReceivablePayment{}))

	_, err := NewAggregator(db).Summarize(context.Background(), "C1", models.PartnerCustomer)
	require.Error(t, err)

	var dae *DataAccessError
	require.True(t, errors.As(err, &dae))
	assert.Equal(t, "Summarize", dae.Op)
	assert.Equal(t, "receivable_payments", dae.Table)
	assert.ErrorIs(t, err, ErrDataAccess)
}

func TestListLedgerEntriesUnboundedNewestFirst(t *testing.T) {
	store := fixture(t)

	rows, err := store.ListLedgerEntries(context.Background(), "C001", models.PartnerCustomer, LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	var dates []string
	for _, r := range rows {
		dates = append(dates, r.Date)
		assert.Equal(t, "C001", r.PartnerCode)
	}
	assert.Equal(t, []string{"2024-03-05", "2024-02-20", "2024-01-10"}, dates)
}

func TestListLedgerEntriesBoundsAreInclusive(t *testing.T) {
	store := fixture(t)

	rows, err := store.ListLedgerEntries(context.Background(), "C001", models.PartnerCustomer, LedgerFilter{
		Window: DateWindow{From: "2024-01-10", To: "2024-02-20"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-02-20", rows[0].Date)
	assert.Equal(t, "2024-01-10", rows[1].Date)
}

func TestListLedgerEntriesOpenEnded(t *testing.T) {
	store := fixture(t)
	ctx := context.Background()

	fromOnly, err := store.ListLedgerEntries(ctx, "C001", models.PartnerCustomer, LedgerFilter{Window: DateWindow{From: "2024-02-21"}})
	require.NoError(t, err)
	require.Len(t, fromOnly, 1)
	assert.Equal(t, "2024-03-05", fromOnly[0].Date)

	toOnly, err := store.ListLedgerEntries(ctx, "C001", models.PartnerCustomer, LedgerFilter{Window: DateWindow{To: "2024-01-10"}})
	require.NoError(t, err)
	require.Len(t, toOnly, 1)
	assert.Equal(t, "2024-01-10", toOnly[0].Date)
}

func TestListLedgerEntriesByProduct(t *testing.T) {
	store := fixture(t)

	rows, err := store.ListLedgerEntries(context.Background(), "C001", models.PartnerCustomer, LedgerFilter{ProductCode: "P1"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "P1", r.ProductCode)
	}
}

func TestListLedgerEntriesTiesKeepInsertionOrder(t *testing.T) {
	db := newTestDB(t)
	seed(t, db,
		&models.InboundRecord{SupplierCode: "S1", Remark: "first", InboundDate: "2024-05-01"},
		&models.InboundRecord{SupplierCode: "S1", Remark: "second", InboundDate: "2024-05-01"},
		&models.InboundRecord{SupplierCode: "S1", Remark: "newer", InboundDate: "2024-06-01"},
		&models.InboundRecord{SupplierCode: "S1", Remark: "third", InboundDate: "2024-05-01"},
	)

	rows, err := NewDetailFilter(db).ListLedgerEntries(context.Background(), "S1", models.PartnerSupplier, LedgerFilter{})
	require.NoError(t, err)

	var remarks []string
	for _, r := range rows {
		remarks = append(remarks, r.Remark)
	}
	assert.Equal(t, []string{"newer", "first", "second", "third"}, remarks)
}

func TestListPaymentEntries(t *testing.T) {
	store := fixture(t)
	ctx := context.Background()

	all, err := store.ListPaymentEntries(ctx, "C001", models.PartnerCustomer, DateWindow{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2024-03-31", all[0].PayDate)
	assert.Equal(t, "cash", all[0].PayMethod)
	assert.True(t, all[1].Amount.Equal(dec("150")))

	edge, err := store.ListPaymentEntries(ctx, "C001", models.PartnerCustomer, DateWindow{From: "2024-01-31", To: "2024-01-31"})
	require.NoError(t, err)
	require.Len(t, edge, 1)

	none, err := store.ListPaymentEntries(ctx, "S001", models.PartnerSupplier, DateWindow{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSummaryIgnoresDetailWindow(t *testing.T) {
	store := fixture(t)
	ctx := context.Background()

	before, err := store.Summarize(ctx, "C001", models.PartnerCustomer)
	require.NoError(t, err)

	narrow, err := store.ListLedgerEntries(ctx, "C001", models.PartnerCustomer, LedgerFilter{Window: DateWindow{From: "2024-03-01"}})
	require.NoError(t, err)
	require.Len(t, narrow, 1)

	after, err := store.Summarize(ctx, "C001", models.PartnerCustomer)
	require.NoError(t, err)
	assert.True(t, before.Total.Equal(after.Total))
	assert.True(t, before.Paid.Equal(after.Paid))
	assert.True(t, after.Total.GreaterThan(narrow[0].TotalPrice))
}

func TestParseDateWindow(t *testing.T) {
	tests := []struct {
		name      string
		from, to  string
		want      DateWindow
		warnField []string
	}{
		{"both valid", "2024-01-01", "2024-12-31", DateWindow{From: "2024-01-01", To: "2024-12-31"}, nil},
		{"both empty", "", "", DateWindow{}, nil},
		{"trimmed", " 2024-01-01 ", "", DateWindow{From: "2024-01-01"}, nil},
		{"bad month and day", "2024-13-40", "2024-12-31", DateWindow{To: "2024-12-31"}, []string{"outbound_from"}},
		{"both bad", "yesterday", "2024/01/01", DateWindow{}, []string{"outbound_from", "outbound_to"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := ParseDateWindow("outbound", tt.from, tt.to)
			assert.Equal(t, tt.want, got)

			var fields []string
			for _, w := range warnings {
				fields = append(fields, w.Field)
				assert.ErrorIs(t, w, ErrInvalidDate)
			}
			assert.Equal(t, tt.warnField, fields)
		})
	}
}

func TestDateWindowContains(t *testing.T) {
	w := DateWindow{From: "2024-01-01", To: "2024-01-31"}
	assert.True(t, w.Contains("2024-01-01"))
	assert.True(t, w.Contains("2024-01-31"))
	assert.False(t, w.Contains("2023-12-31"))
	assert.False(t, w.Contains("2024-02-01"))
	assert.True(t, DateWindow{}.Contains("1999-09-09"))
}
