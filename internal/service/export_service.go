package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"controle-motoristas/internal/dto"
	"controle-motoristas/internal/filter"
	"controle-motoristas/internal/model"
	"controle-motoristas/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRecords    = errors.New("筛选后没有可导出的记录")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出某日对账后的记录（经筛选），一行一名司机，以 bytes.Buffer 返回，
// 由 Handler 层设置下载响应头。
type ExportService interface {
	ExportDay(ctx context.Context, scope model.Scope, req *dto.ExportRecordsRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	roster RosterSyncService
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, roster RosterSyncService, loc *time.Location, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, roster: roster, loc: loc, now: time.Now, logger: logger}
}

// exportHeaders 表头（与业务方使用的葡语表格一致）
var exportHeaders = []string{
	"Motorista", "Data", "Gestor", "Placas",
	"Status", "Justificativa",
	"Status Viagem", "Justificativa",
	"Hora Extra", "Justificativa",
	"Dias em Jornada", "Justificativa",
	"Última edição",
}

// ═══════════════════════════════════════════════════════════
// ExportDay
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportDay(ctx context.Context, scope model.Scope, req *dto.ExportRecordsRequest) (*bytes.Buffer, string, error) {
	date, err := parseDateOrToday(req.Date, s.now, s.loc)
	if err != nil {
		return nil, "", err
	}

	opts := filter.Options{
		Scope:         scope,
		SearchTerm:    req.Search,
		ColumnFilters: columnFilters(req.Status, req.TripStatus, req.Overtime, "", ""),
	}
	if err := opts.Validate(); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidFilter, err)
	}

	// 1. 对账（保证导出的是完整名册）
	records, err := s.roster.Reconcile(ctx, scope, date)
	if err != nil {
		return nil, "", err
	}

	// 2. 筛选
	records = filter.Filter(records, opts)
	if len(records) == 0 {
		return nil, "", ErrExportNoRecords
	}

	// 3. 管理者姓名（仅展示；查询失败时退化为 ID）
	managerNames := make(map[string]string)
	if managers, err := s.repo.Manager.List(ctx); err != nil {
		s.logger.Warn("查询管理者失败，导出使用管理者 ID", zap.Error(err))
	} else {
		for _, m := range managers {
			managerNames[m.ManagerID] = m.Name
		}
	}

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := date.String()
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range exportHeaders {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(exportHeaders)-1), 1), headerStyle)
	f.SetColWidth(sheetName, "A", "A", 28)
	f.SetColWidth(sheetName, "B", colName(len(exportHeaders)-1), 18)
	f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	for i := range records {
		r := &records[i]
		row := i + 2

		manager := r.ManagerID
		if name, ok := managerNames[r.ManagerID]; ok {
			manager = name
		}
		lastEdit := ""
		if r.LastEditedAt != nil {
			lastEdit = fmt.Sprintf("%s %s", r.LastEditedBy, r.LastEditedAt.In(s.loc).Format("02/01/2006 15:04"))
		}

		values := []interface{}{
			r.DriverName, r.Date.Time().Format("02/01/2006"), manager, r.Plates,
			string(r.GeneralStatus), r.GeneralJustification,
			string(r.TripStatus), r.TripJustification,
			string(r.Overtime), r.OvertimeJustification,
			r.ConsecutiveDays, r.ConsecutiveDaysJustification,
			lastEdit,
		}
		for col, v := range values {
			f.SetCellValue(sheetName, cell(colName(col), row), v)
		}
	}

	if err := f.AutoFilter(sheetName, fmt.Sprintf("A1:%s", cell(colName(len(exportHeaders)-1), len(records)+1)), nil); err != nil {
		s.logger.Warn("设置自动筛选失败", zap.Error(err))
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("controle_motoristas_%s.xlsx", date.String())
	return buf, filename, nil
}

// ── 辅助函数 ──

// colName 0 起始列号 → 列名
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
