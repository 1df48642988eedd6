package authz

// Role is a coarse job-function tag used as the sole key for authorization
// decisions. The set is closed; anything else parses to RoleUnknown.
type Role string

const (
	RoleAdmin            Role = "Admin"
	RoleManager          Role = "Manager"
	RoleEmployee         Role = "Employee"
	RoleCashier          Role = "Cashier"
	RoleWarehouseManager Role = "Warehouse Manager"
	RoleUnknown          Role = ""
)

// ParseRole maps a stored role string onto the closed enumeration.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleEmployee, RoleCashier, RoleWarehouseManager:
		return Role(s)
	}
	return RoleUnknown
}

// Permission is a fine-grained capability code granted in bulk per role.
type Permission string

// Permission codes, grouped by resource.
const (
	// System
	PermSystemAdmin Permission = "system.admin"

	// Users
	PermUserCreate Permission = "user.create"
	PermUserRead   Permission = "user.read"
	PermUserUpdate Permission = "user.update"
	PermUserDelete Permission = "user.delete"

	// Suppliers
	PermSupplierCreate Permission = "supplier.create"
	PermSupplierRead   Permission = "supplier.read"
	PermSupplierUpdate Permission = "supplier.update"
	PermSupplierDelete Permission = "supplier.delete"

	// Warehouses & stock
	PermWarehouseCreate Permission = "warehouse.create"
	PermWarehouseRead   Permission = "warehouse.read"
	PermWarehouseUpdate Permission = "warehouse.update"
	PermWarehouseDelete Permission = "warehouse.delete"
	PermInventoryUpdate Permission = "inventory.update"

	// Employees
	PermEmployeeCreate Permission = "employee.create"
	PermEmployeeRead   Permission = "employee.read"
	PermEmployeeUpdate Permission = "employee.update"
	PermEmployeeDelete Permission = "employee.delete"

	// Purchases
	PermPurchaseCreate Permission = "purchase.create"
	PermPurchaseRead   Permission = "purchase.read"
	PermPurchaseUpdate Permission = "purchase.update"
	PermPurchaseDelete Permission = "purchase.delete"

	// Reporting
	PermReportsView Permission = "reports.view"
)

// RolePermissions is the static role→permission table. The session manager,
// the guard presets, and the database seeder all read from this one table.
// RoleWarehouseManager has no entry here: the role exists in user records and
// route checks but carries no table-granted capabilities (see DESIGN.md).
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermSystemAdmin,
		PermUserCreate, PermUserRead, PermUserUpdate, PermUserDelete,
		PermSupplierCreate, PermSupplierRead, PermSupplierUpdate, PermSupplierDelete,
		PermWarehouseCreate, PermWarehouseRead, PermWarehouseUpdate, PermWarehouseDelete,
		PermInventoryUpdate,
		PermEmployeeCreate, PermEmployeeRead, PermEmployeeUpdate, PermEmployeeDelete,
		PermPurchaseCreate, PermPurchaseRead, PermPurchaseUpdate, PermPurchaseDelete,
		PermReportsView,
	},
	RoleManager: {
		PermUserRead,
		PermSupplierCreate, PermSupplierRead, PermSupplierUpdate, PermSupplierDelete,
		PermWarehouseRead, PermWarehouseUpdate,
		PermInventoryUpdate,
		PermEmployeeCreate, PermEmployeeRead, PermEmployeeUpdate,
		PermPurchaseCreate, PermPurchaseRead, PermPurchaseUpdate, PermPurchaseDelete,
		PermReportsView,
	},
	RoleEmployee: {
		PermSupplierRead,
		PermWarehouseRead,
		PermInventoryUpdate,
		PermPurchaseRead,
	},
	RoleCashier: {
		PermSupplierRead,
		PermPurchaseCreate, PermPurchaseRead, PermPurchaseUpdate,
	},
}

// PermissionsFor returns a copy of the table entry for role, or an empty
// slice for roles without an entry.
func PermissionsFor(role Role) []Permission {
	perms, ok := RolePermissions[role]
	if !ok {
		return []Permission{}
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// Hierarchy orders roles from least to most privileged. Roles absent from the
// hierarchy (including RoleWarehouseManager) rank below every listed role.
var Hierarchy = []Role{RoleCashier, RoleEmployee, RoleManager, RoleAdmin}

// RankOf returns the index of role in Hierarchy, or -1 if absent.
func RankOf(role Role) int {
	for i, r := range Hierarchy {
		if r == role {
			return i
		}
	}
	return -1
}

// CanAccess reports whether current ranks at or above required in the
// hierarchy. An unlisted current role never satisfies a listed requirement.
func CanAccess(current, required Role) bool {
	cur := RankOf(current)
	if cur < 0 {
		return false
	}
	return cur >= RankOf(required)
}
