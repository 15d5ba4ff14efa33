package authz

import "github.com/fleetms/vms-backend/internal/model"

// policy is the static authority table: one row per (resource, action)
// mapping to the set of roles allowed to perform it. Ownership scoping
// is applied separately at query time.
var policy = map[Resource]map[Action][]string{
	ResourceVehicles: {
		ActionView:   {model.RoleAdmin, model.RoleManager, model.RoleVehicleOwner, model.RoleDriver, model.RoleGateSecurity},
		ActionCreate: {model.RoleAdmin, model.RoleManager, model.RoleVehicleOwner},
		ActionUpdate: {model.RoleAdmin, model.RoleManager, model.RoleVehicleOwner},
		ActionDelete: {model.RoleAdmin},
	},
	ResourceDrivers: {
		ActionView:   {model.RoleAdmin, model.RoleManager, model.RoleGateSecurity, model.RoleVehicleOwner},
		ActionCreate: {model.RoleAdmin, model.RoleManager, model.RoleGateSecurity},
		ActionUpdate: {model.RoleAdmin, model.RoleManager, model.RoleGateSecurity},
		ActionDelete: {model.RoleAdmin},
	},
	ResourceCheckIns: {
		ActionView:   {model.RoleAdmin, model.RoleManager, model.RoleDriver, model.RoleGateSecurity},
		ActionCreate: {model.RoleAdmin, model.RoleManager, model.RoleGateSecurity},
		ActionUpdate: {model.RoleAdmin, model.RoleManager, model.RoleGateSecurity},
		ActionDelete: {model.RoleAdmin},
	},
	ResourceMaintenances: {
		ActionView:   {model.RoleAdmin, model.RoleManager, model.RoleVehicleOwner, model.RoleDriver},
		ActionCreate: {model.RoleAdmin, model.RoleManager, model.RoleVehicleOwner, model.RoleDriver},
		ActionUpdate: {model.RoleAdmin, model.RoleManager, model.RoleVehicleOwner, model.RoleDriver},
		ActionDelete: {model.RoleAdmin},
	},
	ResourceExpenses: {
		ActionView:   {model.RoleAdmin, model.RoleManager},
		ActionCreate: {model.RoleAdmin, model.RoleManager},
		ActionUpdate: {model.RoleAdmin, model.RoleManager},
		ActionDelete: {model.RoleAdmin},
	},
	ResourceIncomes: {
		ActionView:   {model.RoleAdmin, model.RoleManager},
		ActionCreate: {model.RoleAdmin, model.RoleManager},
		ActionUpdate: {model.RoleAdmin, model.RoleManager},
		ActionDelete: {model.RoleAdmin},
	},
	ResourceTrips: {
		ActionView:   {model.RoleAdmin, model.RoleManager, model.RoleDriver, model.RoleVehicleOwner},
		ActionCreate: {model.RoleAdmin, model.RoleManager, model.RoleDriver},
		ActionUpdate: {model.RoleAdmin, model.RoleManager, model.RoleDriver},
		ActionDelete: {model.RoleAdmin},
	},
	ResourceUsers: {
		ActionView:   {model.RoleAdmin, model.RoleManager},
		ActionCreate: {model.RoleAdmin, model.RoleManager},
		ActionUpdate: {model.RoleAdmin},
		ActionDelete: {model.RoleAdmin},
	},
	ResourceAudit: {
		ActionView: {model.RoleAdmin},
	},
	ResourceDashboard: {
		ActionView: {model.RoleAdmin, model.RoleManager, model.RoleVehicleOwner},
	},
}

// CanCompleteMaintenance reports whether the role may move a
// maintenance record to Completed. Drivers and vehicle owners may
// create and edit maintenance but never complete it.
func CanCompleteMaintenance(role string) bool {
	return role == model.RoleAdmin || role == model.RoleManager
}
