package service

import (
	"context"
	"fmt"
	"strings"

	"flourmill/internal/authz"
	"flourmill/internal/model"
	"flourmill/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoleResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	IsSystem    bool                 `json:"is_system"`
	Permissions []PermissionResponse `json:"permissions"`
	CreatedAt   string               `json:"created_at"`
}

type PermissionResponse struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Group string `json:"group"`
}

// RoleService exposes the role/permission catalog and keeps the database in
// step with the static authz table.
type RoleService interface {
	ListRoles(ctx context.Context) ([]RoleResponse, error)
	ListPermissions(ctx context.Context) ([]PermissionResponse, error)
	GetPermissionsByRoleName(ctx context.Context, roleName string) ([]string, error)
	SeedDefaultRolesAndPermissions(ctx context.Context) error
}

type roleService struct {
	repo repository.RoleRepository
}

func NewRoleService(repo repository.RoleRepository) RoleService {
	return &roleService{repo: repo}
}

func toRoleResponse(r model.Role) RoleResponse {
	perms := make([]PermissionResponse, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		perms = append(perms, PermissionResponse{
			ID:    p.ID.String(),
			Code:  p.Code,
			Name:  p.Name,
			Group: p.Group,
		})
	}
	return RoleResponse{
		ID:          r.ID.String(),
		Name:        r.Name,
		Description: r.Description,
		IsSystem:    r.IsSystem,
		Permissions: perms,
		CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (s *roleService) ListRoles(ctx context.Context) ([]RoleResponse, error) {
	roles, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}

	res := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		res = append(res, toRoleResponse(r))
	}
	return res, nil
}

func (s *roleService) ListPermissions(ctx context.Context) ([]PermissionResponse, error) {
	perms, err := s.repo.ListPermissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch permissions: %w", err)
	}

	res := make([]PermissionResponse, 0, len(perms))
	for _, p := range perms {
		res = append(res, PermissionResponse{
			ID:    p.ID.String(),
			Code:  p.Code,
			Name:  p.Name,
			Group: p.Group,
		})
	}
	return res, nil
}

func (s *roleService) GetPermissionsByRoleName(ctx context.Context, roleName string) ([]string, error) {
	return s.repo.GetPermissionsByRoleName(ctx, roleName)
}

// permissionDisplayName derives a readable name from a code like
// "purchase.create" → "Create purchase".
func permissionDisplayName(code string) string {
	parts := strings.SplitN(code, ".", 2)
	if len(parts) != 2 {
		return code
	}
	verb := parts[1]
	return strings.ToUpper(verb[:1]) + verb[1:] + " " + parts[0]
}

// SeedDefaultRolesAndPermissions mirrors the static authz table into the
// database: built-in roles, the full permission catalog, and the join rows.
// Re-running is idempotent; it also re-grants permissions so the DB cannot
// drift from the table after an upgrade.
func (s *roleService) SeedDefaultRolesAndPermissions(ctx context.Context) error {
	// Permission catalog first
	permIDs := make(map[authz.Permission]uuid.UUID)
	for _, perms := range authz.RolePermissions {
		for _, code := range perms {
			if _, ok := permIDs[code]; ok {
				continue
			}
			group := strings.SplitN(string(code), ".", 2)[0]
			perm := &model.Permission{
				Code:  string(code),
				Name:  permissionDisplayName(string(code)),
				Group: group,
			}
			if err := s.repo.FindOrCreatePermission(ctx, perm); err != nil {
				return fmt.Errorf("failed to seed permission %q: %w", code, err)
			}
			permIDs[code] = perm.ID
		}
	}

	// Built-in roles, including the permission-less Warehouse Manager
	seedRoles := []authz.Role{
		authz.RoleAdmin, authz.RoleManager, authz.RoleEmployee,
		authz.RoleCashier, authz.RoleWarehouseManager,
	}
	for _, name := range seedRoles {
		role, err := s.repo.FindByName(ctx, string(name))
		if err != nil {
			if err != gorm.ErrRecordNotFound {
				return fmt.Errorf("failed to look up role %q: %w", name, err)
			}
			role = &model.Role{
				Name:        string(name),
				Description: "Built-in " + string(name) + " role",
				IsSystem:    true,
			}
			if err := s.repo.Create(ctx, role); err != nil {
				return fmt.Errorf("failed to seed role %q: %w", name, err)
			}
		}

		granted := authz.PermissionsFor(name)
		ids := make([]uuid.UUID, 0, len(granted))
		for _, code := range granted {
			ids = append(ids, permIDs[code])
		}
		if err := s.repo.ReplacePermissions(ctx, role.ID, ids); err != nil {
			return fmt.Errorf("failed to grant permissions to %q: %w", name, err)
		}
	}
	return nil
}
