package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/milkcenter/internal/domain/models"
	"github.com/mamadbah2/milkcenter/internal/service/procurement"
)

type staticSource procurement.Snapshot

func (s staticSource) Snapshot() procurement.Snapshot {
	return procurement.Snapshot(s)
}

func TestExportWorkbook(t *testing.T) {
	source := staticSource{
		Farmers: []models.Farmer{{ID: "F1", Code: "F001", Name: "Anil Kumar", Village: "Holenarasipur", IsActive: true}},
		Collections: []models.CollectionEntry{
			{ID: "c1", FarmerID: "F1", Date: "2024-05-01", Shift: models.ShiftMorning, QuantityLiters: 28, Amount: 966},
			{ID: "c2", FarmerID: "ghost", Date: "2024-05-01", Shift: models.ShiftEvening, QuantityLiters: 5, Amount: 100},
		},
		Payments: []models.PaymentRecord{
			{ID: "p1", FarmerID: "F1", Date: "2024-05-01", Amount: 500, Method: models.PaymentUPI, Reference: "UPI1"},
		},
	}

	data, err := NewService(source, nil).ExportWorkbook()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{CollectionsSheet, PaymentsSheet, BalancesSheet}, f.GetSheetList())

	collections, err := f.GetRows(CollectionsSheet)
	require.NoError(t, err)
	require.Len(t, collections, 3)
	assert.Equal(t, "Date", collections[0][0])
	assert.Equal(t, "Anil Kumar", collections[1][2])
	assert.Equal(t, models.UnknownFarmerName, collections[2][2])

	payments, err := f.GetRows(PaymentsSheet)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, []string{"Date", "Farmer", "Amount", "Method", "Reference", "Notes"}, payments[0])
	assert.Equal(t, "UPI", payments[1][3])

	balances, err := f.GetRows(BalancesSheet)
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "F001", balances[1][0])
	assert.Equal(t, "466", balances[1][6])
}

func TestExportWorkbookEmptyLedger(t *testing.T) {
	data, err := NewService(staticSource{}, nil).ExportWorkbook()
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(BalancesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
