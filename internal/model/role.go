package model

// Role 用户角色，取值为固定的封闭集合
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleBolsista Role = "bolsista" // 实验室助理（奖学金学生）
	RoleVisitor  Role = "visitor"
)

// AllRoles 所有合法角色
var AllRoles = []Role{RoleAdmin, RoleBolsista, RoleVisitor}

// IsValidRole 判断角色是否合法
func IsValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleBolsista, RoleVisitor:
		return true
	}
	return false
}
