package export

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/garyjia/claimflow/internal/domain/entity"
)

func sampleClaims() []*entity.Claim {
	period := entity.Period{From: entity.NewDate(2024, time.January, 3), To: entity.NewDate(2024, time.January, 4)}
	return []*entity.Claim{
		{ID: "c1", StaffName: "Alice Johnson", ProjectName: "Apollo", Period: period, Hours: 7.5, Status: entity.StatusPaid, ReasonClaimer: "workshop"},
		{ID: "c2", StaffName: "Nguyễn Văn An", ProjectName: "Borealis", Period: period, Hours: 4, Status: entity.StatusApproved, ReasonApprover: "ok"},
	}
}

func TestExcelExporter(t *testing.T) {
	var buf bytes.Buffer
	e := NewExcelExporter(nil)
	require.NoError(t, e.Export(context.Background(), sampleClaims(), &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, columns, rows[0])
	assert.Equal(t, []string{"c1", "Alice Johnson", "Apollo", "From 2024-01-03 To 2024-01-04", "7.5", "Paid", "workshop"}, rows[1])
	assert.Equal(t, "Nguyễn Văn An", rows[2][1])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "11.5", rows[3][4])
}

func TestPDFExporter(t *testing.T) {
	var buf bytes.Buffer
	e := NewPDFExporter("Paid Claims", nil)
	require.NoError(t, e.Export(context.Background(), sampleClaims(), &buf))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Equal(t, "application/pdf", e.ContentType())
}

func TestExportHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	assert.ErrorIs(t, NewExcelExporter(nil).Export(ctx, sampleClaims(), &buf), context.Canceled)
	assert.ErrorIs(t, NewPDFExporter("", nil).Export(ctx, sampleClaims(), &buf), context.Canceled)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(NewExcelExporter(nil), NewPDFExporter("", nil))

	e, err := r.Get(" XLSX ")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", e.Format())
	assert.Equal(t, "paid.xlsx", Filename("paid", e))

	_, err = r.Get("csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
