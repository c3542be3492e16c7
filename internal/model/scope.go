package model

// Scope 数据范围：单个管理者名下的司机，或全部（管理员视图）
// 作为参数显式传入每个核心操作，不依赖任何全局会话状态
type Scope struct {
	ManagerID string `json:"manager_id,omitempty"`
}

// AllScope 管理员视图
func AllScope() Scope { return Scope{} }

// ManagerScope 单个管理者视图
func ManagerScope(managerID string) Scope { return Scope{ManagerID: managerID} }

func (s Scope) IsAll() bool { return s.ManagerID == "" }

// Includes 判断某管理者名下的数据是否在范围内
func (s Scope) Includes(managerID string) bool {
	return s.IsAll() || s.ManagerID == managerID
}

func (s Scope) String() string {
	if s.IsAll() {
		return "ALL"
	}
	return "manager:" + s.ManagerID
}
