package enums

import "fmt"

// Permission is a granular capability granted to a business membership.
type Permission string

const (
	PermissionPlaceOrders    Permission = "place_orders"
	PermissionManageProducts Permission = "manage_products"
	PermissionManageOrders   Permission = "manage_orders"
	PermissionReportPayments Permission = "report_payments"
	PermissionManageUsers    Permission = "manage_users"
)

var validPermissions = []Permission{
	PermissionPlaceOrders,
	PermissionManageProducts,
	PermissionManageOrders,
	PermissionReportPayments,
	PermissionManageUsers,
}

// String implements fmt.Stringer.
func (p Permission) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Permission.
func (p Permission) IsValid() bool {
	for _, candidate := range validPermissions {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePermission converts raw input into a Permission.
func ParsePermission(value string) (Permission, error) {
	for _, candidate := range validPermissions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid permission %q", value)
}
