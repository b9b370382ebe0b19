package escalation

import (
	"context"
	"fmt"

	escmodels "hsse_platform/internal/api/escalation/models"
	"hsse_platform/internal/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserDirectory là nguồn đọc user để resolve recipient.
type UserDirectory interface {
	FindActiveById(ctx context.Context, id primitive.ObjectID) (escmodels.HsseUser, error)
	FindActiveByRole(ctx context.Context, role string) ([]escmodels.HsseUser, error)
}

// DepartmentDirectory là nguồn đọc bộ phận cho strategy DepartmentHead.
type DepartmentDirectory interface {
	FindOneById(ctx context.Context, id primitive.ObjectID) (escmodels.HsseDepartment, error)
}

// RecipientResolver resolve danh sách người nhận cho một action trên một item.
// Mỗi strategy một implementation, evaluator chỉ phụ thuộc vào interface này.
type RecipientResolver interface {
	Resolve(ctx context.Context, action *escmodels.EscalationAction, item *escmodels.ItemSummary) ([]escmodels.Recipient, error)
}

// NewRecipientResolvers trả về map strategy -> resolver cho evaluator.
func NewRecipientResolvers(users UserDirectory, departments DepartmentDirectory) map[string]RecipientResolver {
	return map[string]RecipientResolver{
		escmodels.StrategyDirectUser:     &directUserResolver{users: users},
		escmodels.StrategyRoleGroup:      &roleGroupResolver{users: users},
		escmodels.StrategySupervisor:     &supervisorResolver{users: users},
		escmodels.StrategyDepartmentHead: &departmentHeadResolver{users: users, departments: departments},
	}
}

// directUserResolver: TargetRef là user id cụ thể.
type directUserResolver struct {
	users UserDirectory
}

func (r *directUserResolver) Resolve(ctx context.Context, action *escmodels.EscalationAction, item *escmodels.ItemSummary) ([]escmodels.Recipient, error) {
	userID, err := primitive.ObjectIDFromHex(action.TargetRef)
	if err != nil {
		return nil, fmt.Errorf("targetRef không phải user id hợp lệ: %s", action.TargetRef)
	}
	user, err := r.users.FindActiveById(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("không tìm thấy user %s: %w", action.TargetRef, err)
	}
	return []escmodels.Recipient{user.ToRecipient()}, nil
}

// roleGroupResolver: TargetRef là tên role, resolve tất cả user active có role đó.
type roleGroupResolver struct {
	users UserDirectory
}

func (r *roleGroupResolver) Resolve(ctx context.Context, action *escmodels.EscalationAction, item *escmodels.ItemSummary) ([]escmodels.Recipient, error) {
	if action.TargetRef == "" {
		return nil, fmt.Errorf("strategy RoleGroup yêu cầu targetRef là tên role")
	}
	users, err := r.users.FindActiveByRole(ctx, action.TargetRef)
	if err != nil {
		return nil, fmt.Errorf("không đọc được users của role %s: %w", action.TargetRef, err)
	}
	recipients := make([]escmodels.Recipient, 0, len(users))
	for i := range users {
		recipients = append(recipients, users[i].ToRecipient())
	}
	return recipients, nil
}

// supervisorResolver: người nhận là giám sát viên của người báo cáo item.
type supervisorResolver struct {
	users UserDirectory
}

func (r *supervisorResolver) Resolve(ctx context.Context, action *escmodels.EscalationAction, item *escmodels.ItemSummary) ([]escmodels.Recipient, error) {
	if item.ReporterID.IsZero() {
		return nil, fmt.Errorf("item %s không có reporter để resolve supervisor", item.ID.Hex())
	}
	reporter, err := r.users.FindActiveById(ctx, item.ReporterID)
	if err != nil {
		return nil, fmt.Errorf("không tìm thấy reporter %s: %w", item.ReporterID.Hex(), err)
	}
	if reporter.SupervisorID.IsZero() {
		return nil, fmt.Errorf("reporter %s không có supervisor", reporter.ID.Hex())
	}
	supervisor, err := r.users.FindActiveById(ctx, reporter.SupervisorID)
	if err != nil {
		return nil, fmt.Errorf("không tìm thấy supervisor %s: %w", reporter.SupervisorID.Hex(), err)
	}
	return []escmodels.Recipient{supervisor.ToRecipient()}, nil
}

// departmentHeadResolver: người nhận là trưởng bộ phận của item.
type departmentHeadResolver struct {
	users       UserDirectory
	departments DepartmentDirectory
}

func (r *departmentHeadResolver) Resolve(ctx context.Context, action *escmodels.EscalationAction, item *escmodels.ItemSummary) ([]escmodels.Recipient, error) {
	if item.DepartmentID.IsZero() {
		return nil, fmt.Errorf("item %s không thuộc bộ phận nào", item.ID.Hex())
	}
	department, err := r.departments.FindOneById(ctx, item.DepartmentID)
	if err != nil {
		return nil, fmt.Errorf("không tìm thấy bộ phận %s: %w", item.DepartmentID.Hex(), err)
	}
	if department.HeadUserID.IsZero() {
		return nil, common.NewError(
			common.ErrCodeEscalationRule,
			fmt.Sprintf("Bộ phận %s chưa có trưởng bộ phận", department.Name),
			common.StatusInternalServerError,
			nil,
		)
	}
	head, err := r.users.FindActiveById(ctx, department.HeadUserID)
	if err != nil {
		return nil, fmt.Errorf("không tìm thấy trưởng bộ phận %s: %w", department.HeadUserID.Hex(), err)
	}
	return []escmodels.Recipient{head.ToRecipient()}, nil
}
