package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"controle-motoristas/internal/model"
)

func TestDailyRecordCodec_RoundTrip(t *testing.T) {
	editedAt := time.Date(2024, 1, 11, 14, 30, 0, 0, time.UTC)
	day := model.NewCalendarDate(2024, 1, 11)
	r := model.DailyRecord{
		ID:                   model.DailyRecordID("A", day),
		DriverID:             "A",
		DriverName:           "Ana Silva",
		Date:                 day,
		ManagerID:            "mgr-1",
		Plates:               "ABC1D23",
		GeneralStatus:        model.GeneralStatusAbsence,
		GeneralJustification: "não compareceu",
		TripStatus:           model.TripStatusLoading,
		TripJustification:    "fila no porto",
		Overtime:             model.OvertimeNotAuthorized,
		ConsecutiveDays:      9,
		LastEditedBy:         "mgr-1",
		LastEditedAt:         &editedAt,
		Version:              3,
	}

	row := encodeDailyRecord(r)
	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), row.RecordDate)
	assert.Equal(t, "FALTA", row.GeneralStatus)
	assert.Equal(t, "CARREGANDO", row.TripStatus)

	assert.Equal(t, r, decodeDailyRecord(row))
}

func TestDecodeDailyRecord_TimestampInOtherZone(t *testing.T) {
	// 驱动可能以会话时区返回 timestamptz；按 UTC 取日期
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	row := dailyRecordRow{RecordDate: time.Date(2024, 1, 10, 21, 0, 0, 0, saoPaulo)}

	assert.Equal(t, model.NewCalendarDate(2024, 1, 11), decodeDailyRecord(row).Date)
}

func TestEncodeDailyRecord_EmptyEditorIsNull(t *testing.T) {
	row := encodeDailyRecord(model.DailyRecord{ID: "x"})
	assert.Nil(t, row.LastEditedBy)
	assert.Nil(t, row.LastEditedAt)
}
