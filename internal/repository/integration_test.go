//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"controle-motoristas/internal/model"
	"controle-motoristas/internal/repository"
	"controle-motoristas/pkg/database"
	pkgerrors "controle-motoristas/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=controle_motoristas_test sslmode=disable TimeZone=America/Sao_Paulo"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

func TestRunMigrations_Idempotent(t *testing.T) {
	sqlDB, err := testDB.DB()
	if err != nil {
		t.Fatal(err)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		t.Errorf("已是最新版本时再次迁移应成功: %v", err)
	}
}

// setupTestData 创建一个管理者和两名司机，返回清理函数
func setupTestData(t *testing.T) (mgr *model.Manager, drivers []model.Driver, cleanup func()) {
	t.Helper()
	ctx := context.Background()
	repos := repository.NewRepository(testDB)
	suffix := time.Now().UnixNano()

	email := fmt.Sprintf("gestor-%d@example.com", suffix)
	mgr = &model.Manager{
		ManagerID: fmt.Sprintf("mgr-%d", suffix),
		Name:      "Gestor Teste",
		Email:     &email,
	}
	if err := repos.Manager.Create(ctx, mgr); err != nil {
		t.Fatalf("创建管理者失败: %v", err)
	}

	drivers = []model.Driver{
		{DriverID: fmt.Sprintf("drv-a-%d", suffix), Name: "Ana", ManagerID: mgr.ManagerID, EmploymentStatus: model.EmploymentActive},
		{DriverID: fmt.Sprintf("drv-b-%d", suffix), Name: "Bruno", ManagerID: mgr.ManagerID, EmploymentStatus: model.EmploymentActive},
		{DriverID: fmt.Sprintf("drv-c-%d", suffix), Name: "Caio", ManagerID: mgr.ManagerID, EmploymentStatus: model.EmploymentTerminated},
	}
	for i := range drivers {
		if err := repos.Driver.Create(ctx, &drivers[i]); err != nil {
			t.Fatalf("创建司机失败: %v", err)
		}
	}

	cleanup = func() {
		testDB.Exec("DELETE FROM daily_records WHERE manager_id = ?", mgr.ManagerID)
		testDB.Exec("DELETE FROM drivers WHERE manager_id = ?", mgr.ManagerID)
		testDB.Exec("DELETE FROM managers WHERE manager_id = ?", mgr.ManagerID)
	}
	return mgr, drivers[:2], cleanup
}

// ═══════════════════════════════════════════════════════════
// DriverRepository
// ═══════════════════════════════════════════════════════════

func TestDriverRepo_ListActive_ScopedAndOrdered(t *testing.T) {
	mgr, _, cleanup := setupTestData(t)
	defer cleanup()

	repos := repository.NewRepository(testDB)
	got, err := repos.Driver.ListActive(context.Background(), model.ManagerScope(mgr.ManagerID))
	if err != nil {
		t.Fatalf("ListActive 失败: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("期望 2 名在职司机，实际 %d", len(got))
	}
	if got[0].Name != "Ana" || got[1].Name != "Bruno" {
		t.Errorf("期望按姓名排序，实际 %s, %s", got[0].Name, got[1].Name)
	}
}

// ═══════════════════════════════════════════════════════════
// DailyRecordRepository
// ═══════════════════════════════════════════════════════════

func TestDriverRepo_Upsert_OverwritesRosterFields(t *testing.T) {
	mgr, drivers, cleanup := setupTestData(t)
	defer cleanup()

	ctx := context.Background()
	repos := repository.NewRepository(testDB)

	start := model.NewCalendarDate(2024, 1, 10)
	end := model.NewCalendarDate(2024, 1, 20)
	updated := drivers[0]
	updated.Name = "Ana Paula"
	updated.VacationStart = &start
	updated.VacationEnd = &end
	if err := repos.Driver.Upsert(ctx, &updated); err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}

	got, err := repos.Driver.GetByID(ctx, drivers[0].DriverID)
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}
	if got.Name != "Ana Paula" || got.VacationEnd == nil || !got.VacationEnd.Equal(end) {
		t.Errorf("名册字段未覆盖: %+v", got)
	}

	fresh := model.Driver{DriverID: drivers[0].DriverID + "-new", Name: "Novo", ManagerID: mgr.ManagerID, EmploymentStatus: model.EmploymentActive}
	if err := repos.Driver.Upsert(ctx, &fresh); err != nil {
		t.Fatalf("Upsert 新司机失败: %v", err)
	}
	if _, err := repos.Driver.GetByID(ctx, fresh.DriverID); err != nil {
		t.Errorf("新司机应被插入: %v", err)
	}
}

func TestDailyRecordRepo_BatchWrite_InsertIsIdempotent(t *testing.T) {
	mgr, drivers, cleanup := setupTestData(t)
	defer cleanup()

	ctx := context.Background()
	repos := repository.NewRepository(testDB)
	day := model.NewCalendarDate(2024, 1, 11)

	rec := model.NewDefaultDailyRecord(&drivers[0], day, 1)
	if err := repos.DailyRecord.BatchWrite(ctx, []model.DailyRecord{rec}); err != nil {
		t.Fatalf("首次写入失败: %v", err)
	}

	// 第二个会话并发合成了同一条记录，但带着不同的值
	dup := rec
	dup.Plates = "OUTRA"
	if err := repos.DailyRecord.BatchWrite(ctx, []model.DailyRecord{dup}); err != nil {
		t.Fatalf("重复插入不应报错: %v", err)
	}

	got, err := repos.DailyRecord.QueryByDateAndScope(ctx, day, model.ManagerScope(mgr.ManagerID))
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("期望 1 条记录，实际 %d", len(got))
	}
	if got[0].Plates != "" || got[0].Version != 1 {
		t.Errorf("已存在记录不应被覆盖: plates=%q version=%d", got[0].Plates, got[0].Version)
	}
	if !got[0].Date.Equal(day) {
		t.Errorf("日期往返不一致: %s", got[0].Date)
	}
}

func TestDailyRecordRepo_GetByIDs_IgnoresScope(t *testing.T) {
	_, drivers, cleanup := setupTestData(t)
	defer cleanup()

	ctx := context.Background()
	repos := repository.NewRepository(testDB)
	day := model.NewCalendarDate(2024, 1, 11)

	rec := model.NewDefaultDailyRecord(&drivers[0], day, 1)
	if err := repos.DailyRecord.BatchWrite(ctx, []model.DailyRecord{rec}); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	got, err := repos.DailyRecord.GetByIDs(ctx, []string{rec.ID, model.DailyRecordID("nao-existe", day)})
	if err != nil {
		t.Fatalf("按 ID 查询失败: %v", err)
	}
	if len(got) != 1 || got[0].ID != rec.ID || got[0].Version != 1 {
		t.Errorf("期望只返回已存在的一条，实际 %+v", got)
	}

	none, err := repos.DailyRecord.GetByIDs(ctx, nil)
	if err != nil || len(none) != 0 {
		t.Errorf("空 ID 列表应返回空结果: %v %v", none, err)
	}
}

func TestDailyRecordRepo_BatchWrite_StaleVersionRollsBack(t *testing.T) {
	_, drivers, cleanup := setupTestData(t)
	defer cleanup()

	ctx := context.Background()
	repos := repository.NewRepository(testDB)
	day := model.NewCalendarDate(2024, 1, 11)

	a := model.NewDefaultDailyRecord(&drivers[0], day, 1)
	b := model.NewDefaultDailyRecord(&drivers[1], day, 1)
	if err := repos.DailyRecord.BatchWrite(ctx, []model.DailyRecord{a, b}); err != nil {
		t.Fatalf("初始化失败: %v", err)
	}
	a.Version, b.Version = 1, 1

	// 另一个编辑者先提交了 b
	other := b
	other.GeneralStatus = model.GeneralStatusAbsence
	other.GeneralJustification = "faltou"
	if err := repos.DailyRecord.BatchWrite(ctx, []model.DailyRecord{other}); err != nil {
		t.Fatalf("另一编辑者提交失败: %v", err)
	}

	a.Plates = "ABC1D23"
	b.Plates = "XYZ9K88"
	err := repos.DailyRecord.BatchWrite(ctx, []model.DailyRecord{a, b})
	if !errors.Is(err, pkgerrors.ErrStaleWrite) {
		t.Fatalf("期望 ErrStaleWrite，实际: %v", err)
	}

	storedA, err := repos.DailyRecord.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID 失败: %v", err)
	}
	if storedA.Plates != "" || storedA.Version != 1 {
		t.Errorf("事务应整体回滚: plates=%q version=%d", storedA.Plates, storedA.Version)
	}
}

func TestDailyRecordRepo_PutAndDelete(t *testing.T) {
	_, drivers, cleanup := setupTestData(t)
	defer cleanup()

	ctx := context.Background()
	repos := repository.NewRepository(testDB)
	rec := model.NewDefaultDailyRecord(&drivers[0], model.NewCalendarDate(2024, 1, 12), 2)

	if err := repos.DailyRecord.Put(ctx, &rec); err != nil {
		t.Fatalf("Put 插入失败: %v", err)
	}
	if rec.Version != 1 {
		t.Errorf("插入后期望 version=1，实际 %d", rec.Version)
	}

	rec.Plates = "QWE2R34"
	if err := repos.DailyRecord.Put(ctx, &rec); err != nil {
		t.Fatalf("Put 覆盖失败: %v", err)
	}
	if rec.Version != 2 {
		t.Errorf("覆盖后期望 version=2，实际 %d", rec.Version)
	}

	if err := repos.DailyRecord.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if _, err := repos.DailyRecord.GetByID(ctx, rec.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("删除后期望 ErrRecordNotFound，实际: %v", err)
	}
	if err := repos.DailyRecord.Delete(ctx, rec.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("重复删除期望 ErrRecordNotFound，实际: %v", err)
	}
}

func TestDailyRecordRepo_QueryByDateRange(t *testing.T) {
	mgr, drivers, cleanup := setupTestData(t)
	defer cleanup()

	ctx := context.Background()
	repos := repository.NewRepository(testDB)
	start := model.NewCalendarDate(2024, 1, 10)

	var batch []model.DailyRecord
	for i := 0; i < 3; i++ {
		batch = append(batch, model.NewDefaultDailyRecord(&drivers[0], start.AddDays(i), i+1))
	}
	if err := repos.DailyRecord.BatchWrite(ctx, batch); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	got, err := repos.DailyRecord.QueryByDateRangeAndScope(ctx, start, start.AddDays(1), model.ManagerScope(mgr.ManagerID))
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("闭区间期望 2 条，实际 %d", len(got))
	}
	if got[0].ConsecutiveDays != 1 || got[1].ConsecutiveDays != 2 {
		t.Errorf("期望按日期排序，实际 %d, %d", got[0].ConsecutiveDays, got[1].ConsecutiveDays)
	}

	other, err := repos.DailyRecord.QueryByDateAndScope(ctx, start, model.ManagerScope("nao-existe"))
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("其他管理者范围应为空，实际 %d", len(other))
	}
}
