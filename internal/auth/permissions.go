package auth

import "github.com/vbonduro/fieldtech/internal/domain"

type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
	// ActionStock covers stock adjustments, orders and receipts on parts.
	ActionStock Action = "stock"
	// ActionManage covers records addressed to other users, such as their
	// notifications.
	ActionManage Action = "manage"
)

var technicianWritable = map[string]bool{
	domain.CollectionEquipment:       true,
	domain.CollectionRepairs:         true,
	domain.CollectionHarpInspections: true,
	domain.CollectionSchedules:       true,
	domain.CollectionPhotos:          true,
	domain.CollectionNotifications:   true,
}

// Can reports whether role may perform action on collection.
func Can(role domain.Role, action Action, collection string) bool {
	switch role {
	case domain.RoleAdmin:
		return true
	case domain.RoleOffice:
		return action == ActionRead || collection != domain.CollectionUsers
	case domain.RoleTechnician:
		switch action {
		case ActionRead:
			return true
		case ActionStock:
			return collection == domain.CollectionParts
		case ActionManage:
			return false
		default:
			return technicianWritable[collection]
		}
	case domain.RoleViewer:
		return action == ActionRead
	}
	return false
}
