package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ActorKind 操作主体类型
type ActorKind string

// 操作主体类型常量
const (
	ActorKindUser      ActorKind = "user"
	ActorKindCustomer  ActorKind = "customer"
	ActorKindSystem    ActorKind = "system"
	ActorKindScheduler ActorKind = "scheduler"
)

// Actor 操作主体（状态历史与审计日志使用，替代裸字符串）
type Actor struct {
	Kind   ActorKind
	UserID uint
}

// ActorUser 员工/管理员主体
func ActorUser(id uint) Actor {
	return Actor{Kind: ActorKindUser, UserID: id}
}

// 预定义主体
var (
	ActorCustomer  = Actor{Kind: ActorKindCustomer}
	ActorSystem    = Actor{Kind: ActorKindSystem}
	ActorScheduler = Actor{Kind: ActorKindScheduler}
)

// String 稳定字符串表示，写入历史行
func (a Actor) String() string {
	if a.Kind == ActorKindUser {
		return fmt.Sprintf("user:%d", a.UserID)
	}
	if a.Kind == "" {
		return string(ActorKindSystem)
	}
	return string(a.Kind)
}

// ParseActor 从历史行还原主体
func ParseActor(s string) Actor {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "user:"); ok {
		id, err := strconv.ParseUint(rest, 10, 64)
		if err == nil {
			return ActorUser(uint(id))
		}
		return Actor{Kind: ActorKindUser}
	}
	switch ActorKind(s) {
	case ActorKindCustomer:
		return ActorCustomer
	case ActorKindScheduler:
		return ActorScheduler
	}
	return ActorSystem
}
