// Package authz decides whether an admin may run a bulk operation and which tenant it is scoped to.
package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/joseph-ayodele/hr-bulk/constants"
	"github.com/joseph-ayodele/hr-bulk/internal/common"
	"github.com/joseph-ayodele/hr-bulk/internal/repository"
)

// AnyDomain in a policy grants the permission for every employer.
const AnyDomain = "*"

const modelText = `
[request_definition]
r = sub, dom, perm

[policy_definition]
p = sub, dom, perm

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.dom == "*" || p.dom == r.dom) && r.perm == p.perm
`

// DefaultPolicies are loaded when no policy file is configured. Roles inherit through
// DefaultRoleHierarchy, so each role lists only what it adds.
var DefaultPolicies = [][]string{
	{string(constants.RoleHRViewer), AnyDomain, string(constants.PermViewEmployee)},
	{string(constants.RoleHRViewer), AnyDomain, string(constants.PermViewLeave)},
	{string(constants.RoleHRViewer), AnyDomain, string(constants.PermViewTeamLeave)},

	{string(constants.RoleHRManager), AnyDomain, string(constants.PermUpdateEmployee)},
	{string(constants.RoleHRManager), AnyDomain, string(constants.PermCreateLeaveRequest)},
	{string(constants.RoleHRManager), AnyDomain, string(constants.PermApproveLeave)},
	{string(constants.RoleHRManager), AnyDomain, string(constants.PermRejectLeave)},

	{string(constants.RoleHRAdmin), AnyDomain, string(constants.PermCreateEmployee)},
	{string(constants.RoleHRAdmin), AnyDomain, string(constants.PermUpdateEmployeeSalary)},
	{string(constants.RoleHRAdmin), AnyDomain, string(constants.PermDeleteEmployee)},
	{string(constants.RoleHRAdmin), AnyDomain, string(constants.PermViewAuditLog)},
	{string(constants.RoleHRAdmin), AnyDomain, string(constants.PermManageRoles)},

	{string(constants.RoleEmployee), AnyDomain, string(constants.PermCreateLeaveRequest)},
	{string(constants.RoleEmployee), AnyDomain, string(constants.PermViewLeave)},
}

var DefaultRoleHierarchy = [][]string{
	{string(constants.RoleHRAdmin), string(constants.RoleHRManager)},
	{string(constants.RoleHRManager), string(constants.RoleHRViewer)},
}

type Config struct {
	// PolicyPath is a casbin CSV policy file. Empty means DefaultPolicies.
	PolicyPath string
}

// Decision is the outcome of an authorization check. Reason is set when Authorized is false.
type Decision struct {
	Authorized bool   `json:"authorized"`
	Reason     string `json:"reason,omitempty"`
	AdminID    int64  `json:"admin_id"`
	AdminName  string `json:"admin_name,omitempty"`
	Role       string `json:"role,omitempty"`
	TenantID   int64  `json:"employer_id"`
}

func deny(adminID int64, reason string) Decision {
	return Decision{AdminID: adminID, Reason: reason}
}

type Authorizer struct {
	enforcer  *casbin.Enforcer
	employees repository.EmployeeRepository
	logger    *slog.Logger
	mu        sync.RWMutex
}

func NewAuthorizer(cfg Config, employees repository.EmployeeRepository, logger *slog.Logger) (*Authorizer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to parse model: %w", err)
	}

	var enf *casbin.Enforcer
	if cfg.PolicyPath != "" {
		enf, err = casbin.NewEnforcer(m, fileadapter.NewAdapter(cfg.PolicyPath))
		if err != nil {
			return nil, fmt.Errorf("authz: failed to initialize enforcer: %w", err)
		}
		if err := enf.LoadPolicy(); err != nil {
			return nil, fmt.Errorf("authz: failed to load policies: %w", err)
		}
	} else {
		enf, err = casbin.NewEnforcer(m)
		if err != nil {
			return nil, fmt.Errorf("authz: failed to initialize enforcer: %w", err)
		}
		if _, err := enf.AddPolicies(DefaultPolicies); err != nil {
			return nil, fmt.Errorf("authz: failed to add default policies: %w", err)
		}
		if _, err := enf.AddGroupingPolicies(DefaultRoleHierarchy); err != nil {
			return nil, fmt.Errorf("authz: failed to add role hierarchy: %w", err)
		}
	}

	logger.Info("authz.ready", "policy_path", cfg.PolicyPath)
	return &Authorizer{enforcer: enf, employees: employees, logger: logger}, nil
}

// HasPermission reports whether role holds perm in the given employer.
func (a *Authorizer) HasPermission(role string, employerID int64, perm constants.Permission) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ok, err := a.enforcer.Enforce(role, strconv.FormatInt(employerID, 10), string(perm))
	if err != nil {
		return false, fmt.Errorf("authz: enforce failed: %w", err)
	}
	return ok, nil
}

// Authorize checks that adminID exists, is active, belongs to employerID (when non-zero) and holds
// the permission op requires. A denial is a Decision; only failures to decide are errors.
func (a *Authorizer) Authorize(ctx context.Context, adminID, employerID int64, op constants.Operation) (Decision, error) {
	admin, err := a.employees.GetByID(ctx, adminID)
	if err != nil {
		if repository.IsNotFound(err) {
			return a.denied(ctx, deny(adminID, fmt.Sprintf("Admin with ID %d not found", adminID))), nil
		}
		return Decision{}, common.NewAppError(common.CodeAuthzFailure, "authorization check failed", errors.Join(common.ErrInternal, err))
	}
	if admin.Status != string(constants.EmployeeStatusActive) {
		return a.denied(ctx, deny(adminID, fmt.Sprintf("Admin account is %s", admin.Status))), nil
	}
	if employerID != 0 && employerID != admin.EmployerID {
		return a.denied(ctx, deny(adminID, fmt.Sprintf("Admin %d does not belong to employer %d", adminID, employerID))), nil
	}

	if op.IsAuto() {
		// The operation is not known yet; the caller must be able to run at least one.
		perm, err := a.anyBulkPermission(admin.Role, admin.EmployerID)
		if err != nil {
			return Decision{}, common.NewAppError(common.CodeAuthzFailure, "authorization check failed", errors.Join(common.ErrInternal, err))
		}
		if perm == "" {
			return a.denied(ctx, deny(adminID, fmt.Sprintf("Role '%s' may not run any bulk operation", admin.Role))), nil
		}
	} else {
		perm := op.Permission()
		if perm == "" {
			return a.denied(ctx, deny(adminID, fmt.Sprintf("Unknown operation '%s'", op))), nil
		}
		ok, err := a.HasPermission(admin.Role, admin.EmployerID, perm)
		if err != nil {
			return Decision{}, common.NewAppError(common.CodeAuthzFailure, "authorization check failed", errors.Join(common.ErrInternal, err))
		}
		if !ok {
			return a.denied(ctx, deny(adminID, fmt.Sprintf("Role '%s' does not have permission '%s'", admin.Role, perm))), nil
		}
	}

	a.logger.Debug("authz.allowed", "admin_id", adminID, "role", admin.Role, "employer_id", admin.EmployerID, "operation", op)
	return Decision{
		Authorized: true,
		AdminID:    adminID,
		AdminName:  admin.FullName(),
		Role:       admin.Role,
		TenantID:   admin.EmployerID,
	}, nil
}

// anyBulkPermission returns the first bulk permission role holds in employerID, or "".
func (a *Authorizer) anyBulkPermission(role string, employerID int64) (constants.Permission, error) {
	for _, op := range constants.Operations {
		ok, err := a.HasPermission(role, employerID, op.Permission())
		if err != nil {
			return "", err
		}
		if ok {
			return op.Permission(), nil
		}
	}
	return "", nil
}

func (a *Authorizer) denied(ctx context.Context, d Decision) Decision {
	a.logger.WarnContext(ctx, "authz.denied", "admin_id", d.AdminID, "reason", d.Reason)
	return d
}

// ReloadPolicy reloads policy data from the configured file.
func (a *Authorizer) ReloadPolicy(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("authz: reload policy failed: %w", err)
	}
	a.logger.InfoContext(ctx, "authz.policy.reloaded")
	return nil
}
