package domain

// OperatorRole enumerates control-room roles carried in bearer tokens.
type OperatorRole string

const (
	RoleOperator   OperatorRole = "OPERATOR"
	RoleSupervisor OperatorRole = "SUPERVISOR"
)

// Operator is the authenticated control-room caller. Identities are issued
// by an external provider; the service only verifies them.
type Operator struct {
	ID         string
	Name       string
	Role       OperatorRole
	Department string
}

// IsSupervisor reports whether the operator may reprioritize or backfill.
func (o *Operator) IsSupervisor() bool {
	return o != nil && o.Role == RoleSupervisor
}
