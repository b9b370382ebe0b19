package global

import (
	"hsse_platform/config"
	"hsse_platform/internal/registry"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoDB_CollectionName chứa tên các collection trong MongoDB
type MongoDB_CollectionName struct {
	// HSSE Business Collections (read-only đối với escalation engine)
	Incidents   string // Tên collection cho sự cố (incident)
	Hazards     string // Tên collection cho mối nguy (hazard)
	Users       string // Tên collection cho người dùng HSSE
	Departments string // Tên collection cho phòng ban

	// Escalation Engine Collections
	EscalationRules   string // Tên collection cho escalation rules
	EscalationActions string // Tên collection cho escalation actions
	EscalationHistory string // Tên collection cho escalation history (ledger)
	EscalationLocks   string // Tên collection cho distributed locks

	// Notification Collections
	NotificationTemplates string // Tên collection cho notification templates
	NotificationSenders   string // Tên collection cho cấu hình provider của các kênh gửi
}

// Các biến toàn cục
var Validate *validator.Validate               // Biến để xác thực dữ liệu
var MongoDB_Session *mongo.Client              // Phiên kết nối tới MongoDB
var ServerConfig *config.Configuration         // Cấu hình của server
var MongoDB_ColNames = MongoDB_CollectionName{} // Tên các collection

// Các Registry
var RegistryCollections = registry.NewRegistry[*mongo.Collection]() // Registry chứa các collections
