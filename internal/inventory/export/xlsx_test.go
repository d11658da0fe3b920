package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ayuda/internal/inventory/models"
	id "ayuda/pkg/domain"
)

func TestWriteMovements(t *testing.T) {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	supply, err := models.NewSupply(id.SupplyID(uuid.New()), "Jeringas", "unidad", 5, now)
	require.NoError(t, err)
	actor := id.UserID(uuid.New())

	in, _ := models.NewMovement(id.MovementID(uuid.New()), supply.ID, models.MovementEntry, 20, models.ReasonPurchase, actor, "compra", nil, now)
	out, _ := models.NewMovement(id.MovementID(uuid.New()), supply.ID, models.MovementExit, 8, models.ReasonDelivery, actor, "", nil, now.Add(time.Hour))

	var buf bytes.Buffer
	require.NoError(t, WriteMovements(&buf, supply, []*models.Movement{in, out}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 5)
	assert.Equal(t, "Jeringas (unidad)", rows[0][0])
	assert.Equal(t, headers, rows[2])
	assert.Equal(t, "20", rows[3][4])
	assert.Equal(t, "-8", rows[4][3])
	assert.Equal(t, "12", rows[4][4])
	last := rows[len(rows)-1]
	assert.Equal(t, "Total", last[0])
	assert.Equal(t, "12", last[4])
}
