package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"controle-motoristas/internal/dto"
	"controle-motoristas/internal/model"
	"controle-motoristas/internal/repository"
)

// ────────────────────── ParseRosterFile ──────────────────────

const maxImportRows = 5000

var (
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（motorista_id/nome/gestor_id）")
	ErrImportParse       = errors.New("无法解析Excel文件")
)

// RosterRow 名册文件中的一行
type RosterRow struct {
	Row             int
	DriverID        string
	Name            string
	ManagerID       string
	ManagerName     string
	Status          string
	EmploymentStart string
	EmploymentEnd   string
	VacationStart   string
	VacationEnd     string
}

// RosterImportService 从 Excel 导入司机名册（上游人事系统导出的表格）
type RosterImportService interface {
	ParseRosterFile(reader io.Reader) ([]RosterRow, error)
	ImportRoster(ctx context.Context, rows []RosterRow) (*dto.ImportRosterResponse, error)
}

type rosterImportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRosterImportService 创建 RosterImportService 实例
func NewRosterImportService(repo *repository.Repository, logger *zap.Logger) RosterImportService {
	return &rosterImportService{repo: repo, logger: logger}
}

// rosterColumns 列名（葡语/英文均可）→ 字段
var rosterColumns = map[string]string{
	"motorista_id": "driver_id", "driver_id": "driver_id",
	"nome": "name", "name": "name",
	"gestor_id": "manager_id", "manager_id": "manager_id",
	"gestor": "manager_name", "manager_name": "manager_name",
	"situacao": "status", "status": "status",
	"admissao": "employment_start", "employment_start": "employment_start",
	"desligamento": "employment_end", "employment_end": "employment_end",
	"ferias_inicio": "vacation_start", "vacation_start": "vacation_start",
	"ferias_fim": "vacation_end", "vacation_end": "vacation_end",
}

func (s *rosterImportService) ParseRosterFile(reader io.Reader) ([]RosterRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportParse, err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取工作表失败: %w", ErrImportParse, err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	// 解析表头（支持灵活列序）
	colIndex := make(map[string]int)
	for i, h := range excelRows[0] {
		if key, ok := rosterColumns[strings.ToLower(strings.TrimSpace(h))]; ok {
			colIndex[key] = i
		}
	}
	for _, required := range []string{"driver_id", "name", "manager_id"} {
		if _, ok := colIndex[required]; !ok {
			return nil, ErrImportBadHeader
		}
	}

	get := func(row []string, key string) string {
		idx, ok := colIndex[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var rows []RosterRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := RosterRow{
			Row:             i + 1,
			DriverID:        get(row, "driver_id"),
			Name:            get(row, "name"),
			ManagerID:       get(row, "manager_id"),
			ManagerName:     get(row, "manager_name"),
			Status:          get(row, "status"),
			EmploymentStart: get(row, "employment_start"),
			EmploymentEnd:   get(row, "employment_end"),
			VacationStart:   get(row, "vacation_start"),
			VacationEnd:     get(row, "vacation_end"),
		}

		// 跳过全空行
		if item.DriverID == "" && item.Name == "" && item.ManagerID == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// ────────────────────── ImportRoster ──────────────────────

// ImportRoster 逐行校验并写入；单行失败不影响其他行
// 未知的管理者按 gestor 列自动创建；已存在的司机整体覆盖
func (s *rosterImportService) ImportRoster(ctx context.Context, rows []RosterRow) (*dto.ImportRosterResponse, error) {
	resp := &dto.ImportRosterResponse{Total: len(rows)}
	fail := func(row int, format string, args ...interface{}) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportRosterError{Row: row, Reason: fmt.Sprintf(format, args...)})
	}

	knownManagers := make(map[string]bool)

	for _, row := range rows {
		if row.DriverID == "" || row.Name == "" || row.ManagerID == "" {
			fail(row.Row, "必填字段为空")
			continue
		}

		driver, err := row.toDriver()
		if err != nil {
			fail(row.Row, "%v", err)
			continue
		}

		if !knownManagers[row.ManagerID] {
			created, err := s.ensureManager(ctx, row)
			if err != nil {
				s.logger.Error("创建管理者失败", zap.String("manager_id", row.ManagerID), zap.Error(err))
				return nil, err
			}
			if created {
				resp.ManagersCreated++
			}
			knownManagers[row.ManagerID] = true
		}

		if err := s.repo.Driver.Upsert(ctx, driver); err != nil {
			s.logger.Error("写入司机失败", zap.String("driver_id", row.DriverID), zap.Error(err))
			return nil, err
		}
		resp.Success++
	}

	s.logger.Info("名册导入完成",
		zap.Int("total", resp.Total),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed),
		zap.Int("managers_created", resp.ManagersCreated),
	)
	return resp, nil
}

func (s *rosterImportService) ensureManager(ctx context.Context, row RosterRow) (bool, error) {
	_, err := s.repo.Manager.GetByID(ctx, row.ManagerID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	name := row.ManagerName
	if name == "" {
		name = row.ManagerID
	}
	return true, s.repo.Manager.Create(ctx, &model.Manager{ManagerID: row.ManagerID, Name: name})
}

func (r RosterRow) toDriver() (*model.Driver, error) {
	d := &model.Driver{
		DriverID:         r.DriverID,
		Name:             r.Name,
		ManagerID:        r.ManagerID,
		EmploymentStatus: model.EmploymentActive,
	}
	if r.Status != "" {
		d.EmploymentStatus = model.EmploymentStatus(strings.ToUpper(r.Status))
		if !d.EmploymentStatus.Valid() {
			return nil, fmt.Errorf("无效的雇佣状态: %s", r.Status)
		}
	}

	dates := []struct {
		raw    string
		target **model.CalendarDate
		label  string
	}{
		{r.EmploymentStart, &d.EmploymentStart, "入职日期"},
		{r.EmploymentEnd, &d.EmploymentEnd, "离职日期"},
		{r.VacationStart, &d.VacationStart, "休假开始日期"},
		{r.VacationEnd, &d.VacationEnd, "休假结束日期"},
	}
	for _, f := range dates {
		if f.raw == "" {
			continue
		}
		v, err := model.ParseCalendarDate(f.raw)
		if err != nil {
			return nil, fmt.Errorf("%s格式无效: %s", f.label, f.raw)
		}
		*f.target = &v
	}

	if (d.VacationStart == nil) != (d.VacationEnd == nil) {
		return nil, errors.New("休假开始与结束日期需同时填写")
	}
	if vac, ok := d.Vacation(); ok && !vac.Valid() {
		return nil, errors.New("休假开始日期晚于结束日期")
	}
	return d, nil
}

// [自证通过] internal/service/roster_import_service.go
